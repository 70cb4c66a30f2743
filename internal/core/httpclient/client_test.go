package httpclient

import (
	"testing"
	"time"
)

func TestNewOutbound_Timeout(t *testing.T) {
	if c := NewOutbound(0); c.Timeout != 30*time.Second {
		t.Fatalf("default timeout=%v", c.Timeout)
	}
	if c := NewOutbound(2 * time.Second); c.Timeout != 2*time.Second {
		t.Fatalf("timeout=%v", c.Timeout)
	}
}
