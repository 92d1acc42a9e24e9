// Package transfer coordinates one transfer attempt end to end:
// validation, session open, the byte transfer with progress, and the
// terminal history record.
package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sftpgrab/internal/history"
	"sftpgrab/internal/models"
	"sftpgrab/internal/progress"
	"sftpgrab/internal/session"
)

// State of an attempt. Idle is implicit; Done and Failed are terminal.
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateConnecting   State = "connecting"
	StateTransferring State = "transferring"
	StateRecording    State = "recording"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Session is the per-transfer connection the orchestrator drives. It is
// satisfied by *session.Session and by test fakes.
type Session interface {
	Upload(ctx context.Context, localPath, remoteName string, onProgress models.ProgressFunc) error
	Download(ctx context.Context, remoteName, savePath string, onProgress models.ProgressFunc) error
	Close() error
}

// Dialer opens a Session for one attempt.
type Dialer func(params models.ConnectionParams) (Session, error)

// DialSFTP is the production dialer.
func DialSFTP(params models.ConnectionParams) (Session, error) {
	s, err := session.Open(params)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Orchestrator runs transfer attempts. It holds no per-attempt state, so
// it is reusable across attempts; callers serialize concurrent use.
type Orchestrator struct {
	store history.Store
	dial  Dialer
	log   zerolog.Logger

	// OnState, when set, observes state transitions of each attempt.
	OnState func(attemptID string, st State)

	now func() time.Time
}

func New(store history.Store, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store: store,
		dial:  DialSFTP,
		log:   log,
		now:   time.Now,
	}
}

// Run executes one attempt and returns its terminal result. Progress is
// published through rep, which may be nil; the reporter stream is always
// closed before Run returns. All failures are classified and returned in
// the Result, never panicked.
//
// Ordering guarantee: the history record is appended only after the
// session is closed, which happens after the last byte moved.
func (o *Orchestrator) Run(ctx context.Context, params models.ConnectionParams, req models.TransferRequest, rep *progress.Reporter) models.Result {
	id := uuid.NewString()
	log := o.log.With().
		Str("attempt", id).
		Str("direction", string(req.Direction)).
		Str("file", req.FileName()).
		Logger()

	res := models.Result{AttemptID: id, Outcome: models.OutcomeFailed}

	o.setState(id, StateValidating)
	params = params.Normalized()
	if field := params.Missing(); field != "" {
		return o.failValidation(id, log, rep, res, field, false, req)
	}

	switch req.Direction {
	case models.DirectionUpload:
		if req.LocalPath == "" {
			return o.failValidation(id, log, rep, res, "localPath", false, req)
		}
	case models.DirectionDownload:
		if req.RemoteName == "" {
			return o.failValidation(id, log, rep, res, "remoteName", false, req)
		}
		if req.LocalSavePath == "" {
			// A declined save destination is the one validation failure
			// that is recorded as a failed transfer.
			return o.failValidation(id, log, rep, res, "localSavePath", true, req)
		}
	default:
		return o.failValidation(id, log, rep, res, "direction", false, req)
	}

	fileName := req.FileName()

	o.setState(id, StateConnecting)
	log.Debug().Str("addr", params.Addr()).Msg("connecting")
	sess, err := o.dial(params)
	if err != nil {
		rep.Close()
		log.Error().Err(err).Msg("connection failed")
		o.record(log, req.Direction, fileName, models.StatusFailed)
		res.ErrKind = models.ErrKindConnection
		res.Err = err
		o.setState(id, StateFailed)
		return res
	}

	o.setState(id, StateTransferring)
	var last models.ProgressSample
	onProgress := func(s models.ProgressSample) {
		last = s
		rep.Publish(s)
	}

	var xferErr error
	var effective string
	switch req.Direction {
	case models.DirectionUpload:
		xferErr = sess.Upload(ctx, req.LocalPath, fileName, onProgress)
		effective = fileName
	case models.DirectionDownload:
		xferErr = sess.Download(ctx, req.RemoteName, req.LocalSavePath, onProgress)
		effective = req.LocalSavePath
	}

	// The session is closed on every exit path, before anything is
	// recorded: no outcome is written while the connection might be open.
	if cerr := sess.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("session close")
	}

	if xferErr != nil {
		rep.Close()
		log.Error().Err(xferErr).Msg("transfer failed")
		o.record(log, req.Direction, fileName, models.StatusFailed)
		res.ErrKind = models.ErrKindTransfer
		res.Err = xferErr
		o.setState(id, StateFailed)
		return res
	}

	rep.Finish(last)

	o.setState(id, StateRecording)
	if err := o.record(log, req.Direction, fileName, models.StatusSuccess); err != nil {
		// The transfer itself succeeded; the missing record is a warning,
		// not a failure.
		res.StorageWarning = err
	}

	res.Outcome = models.OutcomeSuccess
	res.EffectivePath = effective
	res.ErrKind = ""
	o.setState(id, StateDone)
	log.Info().Str("path", effective).Msg("transfer complete")
	return res
}

// failValidation finishes an attempt that never reached the network.
// Validation failures record nothing, except the declined-save-destination
// case which is recorded as a failed transfer.
func (o *Orchestrator) failValidation(id string, log zerolog.Logger, rep *progress.Reporter, res models.Result, field string, recorded bool, req models.TransferRequest) models.Result {
	rep.Close()
	if recorded {
		o.record(log, req.Direction, req.FileName(), models.StatusFailed)
	}
	log.Error().Str("field", field).Msg("validation failed")
	res.ErrKind = models.ErrKindValidation
	res.Err = &ValidationError{Field: field}
	o.setState(id, StateFailed)
	return res
}

func (o *Orchestrator) record(log zerolog.Logger, direction models.Direction, file, status string) error {
	entry := models.NewHistoryEntry(o.now(), direction, file, status)
	if err := o.store.Append(entry); err != nil {
		log.Warn().Err(err).Msg("history append failed")
		return err
	}
	return nil
}

func (o *Orchestrator) setState(id string, st State) {
	if o.OnState != nil {
		o.OnState(id, st)
	}
}
