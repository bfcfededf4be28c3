package leaselock

import (
	"testing"
	"time"
)

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.TTL != 5*time.Minute {
		t.Fatalf("unexpected TTL default: %v", o.TTL)
	}
	if o.RenewEvery != o.TTL/2 {
		t.Fatalf("unexpected RenewEvery default: %v", o.RenewEvery)
	}
	if o.WaitInterval != 250*time.Millisecond {
		t.Fatalf("unexpected WaitInterval default: %v", o.WaitInterval)
	}

	o = Options{TTL: time.Second, RenewEvery: 2 * time.Second}.withDefaults()
	if o.RenewEvery >= o.TTL {
		t.Fatalf("RenewEvery %v not clamped below TTL %v", o.RenewEvery, o.TTL)
	}

	o = Options{WaitJitter: -time.Second}.withDefaults()
	if o.WaitJitter != 0 {
		t.Fatalf("negative jitter not cleared: %v", o.WaitJitter)
	}
}
