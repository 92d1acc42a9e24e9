// Package session owns one authenticated SFTP connection for the lifetime
// of a single transfer.
package session

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"sftpgrab/internal/models"
)

// chunkSize matches the read/write granularity of the transfer loop; one
// progress sample is emitted per chunk.
const chunkSize = 32 * 1024

const dialTimeout = 15 * time.Second

// Session is one SSH connection with the SFTP subsystem open on top of it.
// It performs exactly one transfer and is then closed.
type Session struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// Open dials the host, authenticates with the password, and starts the
// SFTP subsystem. Nothing is leaked on failure: a transport that fails the
// subsystem handshake is closed before returning.
func Open(params models.ConnectionParams) (*Session, error) {
	cfg := &ssh.ClientConfig{
		User:            params.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(params.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // host keys are not verified
		Timeout:         dialTimeout,
	}

	client, err := ssh.Dial("tcp", params.Addr(), cfg)
	if err != nil {
		return nil, &ConnectionError{Reason: "ssh dial " + params.Addr(), Err: err}
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, &ConnectionError{Reason: "sftp subsystem", Err: err}
	}

	return &Session{ssh: client, sftp: sftpClient}, nil
}

// Upload streams the local file to remoteName, relative to the session's
// working directory. The local size is read once up front so every sample
// carries the final total. A failed upload leaves any partial remote file
// in place; there is no rollback.
func (s *Session) Upload(ctx context.Context, localPath, remoteName string, onProgress models.ProgressFunc) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return &TransferError{Op: "upload", Err: err}
	}
	total := info.Size()

	src, err := os.Open(localPath)
	if err != nil {
		return &TransferError{Op: "upload", Err: err}
	}
	defer src.Close()

	dst, err := s.sftp.Create(remoteName)
	if err != nil {
		return &TransferError{Op: "upload", Err: err}
	}

	if err := copyChunks(ctx, dst, src, total, onProgress); err != nil {
		dst.Close()
		return &TransferError{Op: "upload", Err: err}
	}
	if err := dst.Close(); err != nil {
		return &TransferError{Op: "upload", Err: err}
	}
	return nil
}

// Download stats the remote file first, so a missing remote name fails
// before any local file is created, then streams to savePath. A failure
// mid-stream leaves the partial local file as-is.
func (s *Session) Download(ctx context.Context, remoteName, savePath string, onProgress models.ProgressFunc) error {
	info, err := s.sftp.Stat(remoteName)
	if err != nil {
		return &TransferError{
			Op:       "download",
			Err:      err,
			NotFound: errors.Is(err, os.ErrNotExist),
		}
	}
	total := info.Size()

	src, err := s.sftp.Open(remoteName)
	if err != nil {
		return &TransferError{Op: "download", Err: err}
	}
	defer src.Close()

	dst, err := os.Create(savePath)
	if err != nil {
		return &TransferError{Op: "download", Err: err}
	}

	if err := copyChunks(ctx, dst, src, total, onProgress); err != nil {
		dst.Close()
		return &TransferError{Op: "download", Err: err}
	}
	if err := dst.Close(); err != nil {
		return &TransferError{Op: "download", Err: err}
	}
	return nil
}

// Close releases the connection. Idempotent, and safe after a failed Open.
func (s *Session) Close() error {
	var first error
	if s.sftp != nil {
		if err := s.sftp.Close(); err != nil {
			first = err
		}
		s.sftp = nil
	}
	if s.ssh != nil {
		if err := s.ssh.Close(); err != nil && first == nil {
			first = err
		}
		s.ssh = nil
	}
	return first
}

// copyChunks moves bytes in chunkSize pieces, emitting one progress sample
// per chunk and checking ctx between chunks.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, total int64, onProgress models.ProgressFunc) error {
	buf := make([]byte, chunkSize)
	var transferred int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			transferred += int64(n)
			if onProgress != nil {
				onProgress(models.ProgressSample{Transferred: transferred, Total: total})
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
