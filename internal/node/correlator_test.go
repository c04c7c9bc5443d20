package node

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCorrelatorDeliverThenWait(t *testing.T) {
	c := newCorrelator()
	ch, err := c.Register(1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	c.Deliver(1, json.RawMessage(`{"type":"read_ok","value":7}`))

	body, err := c.Wait(ch, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "read_ok" {
		t.Fatalf("unexpected body: %#v", decoded)
	}
}

func TestCorrelatorDoubleRegisterFails(t *testing.T) {
	c := newCorrelator()
	if _, err := c.Register(1); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := c.Register(1); err != ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestCorrelatorDeliverToUnknownIDDropsSilently(t *testing.T) {
	c := newCorrelator()
	c.Deliver(99, json.RawMessage(`{"type":"read_ok"}`))
}

func TestCorrelatorWaitTimesOut(t *testing.T) {
	c := newCorrelator()
	ch, _ := c.Register(5)
	_, err := c.Wait(ch, 20*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	c.Unregister(5)

	// A late delivery after unregister must not block or panic.
	c.Deliver(5, json.RawMessage(`{}`))
}

func TestCorrelatorUnregisterThenRegisterAgain(t *testing.T) {
	c := newCorrelator()
	ch, _ := c.Register(2)
	c.Unregister(2)
	if _, err := c.Register(2); err != nil {
		t.Fatalf("re-register after unregister: %v", err)
	}
	select {
	case <-ch:
		t.Fatalf("stale channel should never receive after unregister")
	default:
	}
}
