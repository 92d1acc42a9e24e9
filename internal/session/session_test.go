package session

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"sftpgrab/internal/models"
)

func TestCopyChunksProgress(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 3*chunkSize+100)
	total := int64(len(data))

	var dst bytes.Buffer
	var samples []models.ProgressSample
	err := copyChunks(context.Background(), &dst, bytes.NewReader(data), total, func(s models.ProgressSample) {
		samples = append(samples, s)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Fatal("copied bytes differ from source")
	}

	if len(samples) == 0 {
		t.Fatal("expected progress samples")
	}
	var prev int64 = -1
	for _, s := range samples {
		if s.Total != total {
			t.Fatalf("total must be known before the first sample, got %+v", s)
		}
		if s.Transferred < prev {
			t.Fatalf("samples must be non-decreasing: %d after %d", s.Transferred, prev)
		}
		prev = s.Transferred
	}
	final := samples[len(samples)-1]
	if final.Transferred != total {
		t.Errorf("final sample must equal total: %+v", final)
	}
}

func TestCopyChunksEmptySource(t *testing.T) {
	var dst bytes.Buffer
	var samples int
	err := copyChunks(context.Background(), &dst, bytes.NewReader(nil), 0, func(models.ProgressSample) {
		samples++
	})
	if err != nil {
		t.Fatal(err)
	}
	if samples != 0 {
		t.Errorf("zero-byte transfer emits no samples, got %d", samples)
	}
}

func TestCopyChunksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := bytes.Repeat([]byte("x"), 2*chunkSize)
	var dst bytes.Buffer
	err := copyChunks(ctx, &dst, bytes.NewReader(data), int64(len(data)), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if dst.Len() != 0 {
		t.Errorf("cancelled before the first chunk, nothing should be written, got %d bytes", dst.Len())
	}
}

type failWriter struct{ err error }

func (w failWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestCopyChunksWriteError(t *testing.T) {
	wantErr := errors.New("pipe broken")
	data := bytes.Repeat([]byte("x"), chunkSize)
	err := copyChunks(context.Background(), failWriter{wantErr}, bytes.NewReader(data), int64(len(data)), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected write error to propagate, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &Session{}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenUnreachableHost(t *testing.T) {
	params := models.ConnectionParams{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p"}
	_, err := Open(params)
	if err == nil {
		t.Fatal("expected a connection error")
	}
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Errorf("expected *ConnectionError, got %T: %v", err, err)
	}
}
