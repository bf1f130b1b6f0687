package serviceutil

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalContextCancelsOnSigterm(t *testing.T) {
	ctx := SignalContext()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	err := syscall.Kill(os.Getpid(), syscall.SIGTERM)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Second * 5):
		t.Fatal("context not cancelled after SIGTERM")
	}
}
