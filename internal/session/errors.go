package session

import "fmt"

// ConnectionError reports a failure to reach, authenticate with, or start
// the SFTP subsystem on the remote host. No bytes moved.
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed (%s): %v", e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransferError reports a failure while moving bytes, including a download
// of a remote file that does not exist.
type TransferError struct {
	Op       string // "upload" or "download"
	Err      error
	NotFound bool
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
