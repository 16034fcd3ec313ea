package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersMessage(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Querying resistors")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Querying resistors") {
		t.Errorf("spinner output %q does not contain message", buf.String())
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &syncBuffer{}, "Testing")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Testing")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithResult(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Testing")
	s.Start()
	s.StopWithSuccess("3 parts")
	if !strings.Contains(buf.String(), "3 parts") {
		t.Errorf("output %q missing success message", buf.String())
	}

	var errBuf syncBuffer
	s = newSpinner(context.Background(), &errBuf, "Testing")
	s.Start()
	s.StopWithError("catalog down")
	if !strings.Contains(errBuf.String(), "catalog down") {
		t.Errorf("output %q missing error message", errBuf.String())
	}
}
