package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"relayprobe/internal/prober"
)

func TestConsole_SuccessfulRun(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Banner()
	c.Connecting("ws://localhost:1259")
	c.Connected("127.0.0.1:1259")
	c.Waiting(5 * time.Second)
	c.NoMessage()
	c.Outcome(nil)

	want := "Relay WebSocket Test\n" +
		"==================================================\n" +
		"Connecting to ws://localhost:1259...\n" +
		"✓ Connected successfully!\n" +
		"  Connection: 127.0.0.1:1259\n" +
		"\nWaiting for messages (5 seconds)...\n" +
		"  (No immediate messages received)\n" +
		"\n✓ WebSocket connection is working!\n" +
		"\nServer is responding correctly!\n"
	assert.Equal(t, want, buf.String())
}

func TestConsole_Message(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Message(false, []byte("hello relay"))
	c.Message(true, []byte{0xde, 0xad, 'o', 'k'})

	assert.Equal(t, "  Received: hello relay\n  Received: \"\\xde\\xadok\"\n", buf.String())
}

func TestConsole_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		absent   string
	}{
		{
			name:     "refused",
			err:      &prober.ProbeError{Kind: prober.KindRefused, Err: errors.New("connect: connection refused")},
			contains: []string{"✗ Connection refused - is the server running?", "Server test failed!"},
		},
		{
			name:     "timeout",
			err:      &prober.ProbeError{Kind: prober.KindTimeout, Err: errors.New("i/o timeout")},
			contains: []string{"✗ Timed out: i/o timeout", "Server test failed!"},
		},
		{
			name:     "other",
			err:      &prober.ProbeError{Kind: prober.KindOther, Endpoint: "ws://x", Err: errors.New("no such host")},
			contains: []string{"✗ Error: no such host\n", "Server test failed!"},
			absent:   "probe ws://x failed",
		},
		{
			name:     "interrupted",
			err:      &prober.ProbeError{Kind: prober.KindInterrupted, Err: errors.New("context canceled")},
			contains: []string{"Test interrupted by user"},
			absent:   "Server test failed!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf).Outcome(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			if tt.absent != "" {
				assert.NotContains(t, buf.String(), tt.absent)
			}
		})
	}
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "1 second", formatWait(time.Second))
	assert.Equal(t, "5 seconds", formatWait(5*time.Second))
	assert.Equal(t, "250ms", formatWait(250*time.Millisecond))
}
