package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sftpgrab/internal/models"
	"sftpgrab/internal/notify"
	"sftpgrab/internal/progress"
	"sftpgrab/internal/transfer"
	"sftpgrab/pkg/utils"
)

func newUploadCmd(a *app) *cobra.Command {
	var remoteName string
	cmd := &cobra.Command{
		Use:   "upload <local-file>",
		Short: "Upload one local file to the remote working directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAttempt(models.TransferRequest{
				Direction:  models.DirectionUpload,
				LocalPath:  args[0],
				RemoteName: remoteName,
			})
		},
	}
	cmd.Flags().StringVar(&remoteName, "remote-name", "", "remote file name (defaults to the local base name)")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <remote-file>",
		Short: "Download one remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAttempt(models.TransferRequest{
				Direction:     models.DirectionDownload,
				RemoteName:    args[0],
				LocalSavePath: out,
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "local destination path")
	return cmd
}

// runAttempt drives one attempt: the orchestrator runs on a background
// goroutine while this goroutine consumes progress samples for the bar.
// Ctrl-C cancels between chunks.
func (a *app) runAttempt(req models.TransferRequest) error {
	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch := transfer.New(store, a.log)
	rep := progress.NewReporter()

	resCh := make(chan models.Result, 1)
	go func() {
		resCh <- orch.Run(ctx, a.cfg.Params(), req, rep)
	}()

	var bar *progressbar.ProgressBar
	var total int64
	for sample := range rep.Samples() {
		if bar == nil {
			bar = progressbar.DefaultBytes(sample.Total, string(req.Direction))
		}
		bar.Set64(sample.Transferred)
		total = sample.Total
	}
	res := <-resCh
	if bar != nil {
		bar.Finish()
	}

	if res.StorageWarning != nil {
		a.log.Warn().Err(res.StorageWarning).Msg("transfer succeeded but was not recorded")
	}
	a.sendReport(req, res)

	if res.Outcome != models.OutcomeSuccess {
		return res.Err
	}
	a.log.Info().
		Str("path", res.EffectivePath).
		Str("size", utils.HumanBytes(total)).
		Msgf("%s complete", req.Direction)
	return nil
}

func (a *app) sendReport(req models.TransferRequest, res models.Result) {
	if !a.cfg.SMTP.Enabled() {
		return
	}
	status := models.StatusFailed
	if res.Outcome == models.OutcomeSuccess {
		status = models.StatusSuccess
	}
	entry := models.NewHistoryEntry(time.Now(), req.Direction, req.FileName(), status)
	if err := notify.SendTransferReport(a.cfg.SMTP, entry, res); err != nil {
		a.log.Warn().Err(err).Msg("transfer report mail")
	}
}
