package ratelimit_test

import (
	"testing"
	"time"

	"github.com/botify-ai/botify-backend/internal/ratelimit"
)

func newTestGateway(t *testing.T, limit int) *ratelimit.Gateway {
	t.Helper()
	return ratelimit.NewGateway(ratelimit.NewWindowTracker(), limit, time.Minute)
}

func TestAdmitUnderLimit(t *testing.T) {
	gw := newTestGateway(t, 5)

	for i := 0; i < 5; i++ {
		dec := gw.Admit("1.2.3.4", base.Add(time.Duration(i)*time.Second))
		if !dec.Allowed {
			t.Fatalf("Admit() call %d rejected, want accepted", i+1)
		}
		if want := 5 - (i + 1); dec.Remaining != want {
			t.Errorf("Admit() call %d Remaining = %d, want %d", i+1, dec.Remaining, want)
		}
		if dec.Limit != 5 {
			t.Errorf("Admit() Limit = %d, want 5", dec.Limit)
		}
	}
}

func TestAdmitRejectsOverLimit(t *testing.T) {
	gw := newTestGateway(t, 2)

	gw.Admit("c", base)
	gw.Admit("c", base.Add(time.Second))

	dec := gw.Admit("c", base.Add(2*time.Second))
	if dec.Allowed {
		t.Fatal("third Admit() accepted, want rejected")
	}
	if dec.Remaining != 0 {
		t.Errorf("rejected Admit() Remaining = %d, want 0", dec.Remaining)
	}
	if dec.Limit != 2 {
		t.Errorf("rejected Admit() Limit = %d, want 2", dec.Limit)
	}
}

func TestAdmitAfterIdleWindow(t *testing.T) {
	gw := newTestGateway(t, 3)

	gw.Admit("c", base)
	gw.Admit("c", base.Add(time.Second))
	gw.Admit("c", base.Add(2*time.Second))

	dec := gw.Admit("c", base.Add(70*time.Second))
	if !dec.Allowed {
		t.Fatal("Admit() after idle window rejected, want accepted")
	}
	if dec.Remaining != 2 {
		t.Errorf("Admit() after idle window Remaining = %d, want 2", dec.Remaining)
	}
}

func TestAdmitSlidingSequence(t *testing.T) {
	// limit=2/minute; three rapid requests then one 61s after the first.
	gw := newTestGateway(t, 2)

	steps := []struct {
		at            time.Duration
		wantAllowed   bool
		wantRemaining int
	}{
		{0, true, 1},
		{2 * time.Second, true, 0},
		{5 * time.Second, false, 0},
		{61 * time.Second, true, 1},
	}

	for i, step := range steps {
		dec := gw.Admit("1.2.3.4", base.Add(step.at))
		if dec.Allowed != step.wantAllowed {
			t.Errorf("step %d: Allowed = %v, want %v", i+1, dec.Allowed, step.wantAllowed)
		}
		if dec.Remaining != step.wantRemaining {
			t.Errorf("step %d: Remaining = %d, want %d", i+1, dec.Remaining, step.wantRemaining)
		}
	}
}

func TestResetSecondsIsClockAligned(t *testing.T) {
	gw := newTestGateway(t, 10)

	// 12:00:00 UTC is on a minute boundary, so 15s in leaves 45s.
	dec := gw.Admit("c", base.Add(15*time.Second))
	if dec.ResetSeconds != 45 {
		t.Errorf("ResetSeconds = %d, want 45", dec.ResetSeconds)
	}

	// The reset phase is global: a different client at the same instant
	// sees the same countdown.
	dec2 := gw.Admit("other", base.Add(15*time.Second))
	if dec2.ResetSeconds != 45 {
		t.Errorf("ResetSeconds for second client = %d, want 45", dec2.ResetSeconds)
	}
}

func TestAdmitIsolatesClients(t *testing.T) {
	gw := newTestGateway(t, 1)

	if dec := gw.Admit("a", base); !dec.Allowed {
		t.Fatal("Admit(a) rejected, want accepted")
	}
	if dec := gw.Admit("b", base); !dec.Allowed {
		t.Error("Admit(b) rejected; quota must be per client")
	}
	if dec := gw.Admit("a", base.Add(time.Second)); dec.Allowed {
		t.Error("second Admit(a) accepted, want rejected")
	}
}
