package cli

import (
	"syscall"
	"testing"
	"time"
)

func TestWaitForShutdown(t *testing.T) {
	sigChan := WaitForShutdown()

	select {
	case sig := <-sigChan:
		t.Fatalf("received %v before any signal was sent", sig)
	default:
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("sending SIGTERM: %v", err)
	}

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("received %v, want SIGTERM", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no signal received")
	}
}
