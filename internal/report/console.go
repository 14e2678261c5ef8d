package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"relayprobe/internal/prober"
)

const (
	title     = "Relay WebSocket Test"
	ruleWidth = 50
)

var _ prober.Observer = (*Console)(nil)

// Console prints human-readable probe progress. It implements prober.Observer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Banner prints the title block shown before a run.
func (c *Console) Banner() {
	c.printf("%s\n%s\n", title, strings.Repeat("=", ruleWidth))
}

// Connecting prints the endpoint about to be dialed.
func (c *Console) Connecting(endpoint string) {
	c.printf("Connecting to %s...\n", endpoint)
}

// Connected prints the peer address of an established connection.
func (c *Console) Connected(remoteAddr string) {
	c.printf("✓ Connected successfully!\n  Connection: %s\n", remoteAddr)
}

// Waiting prints how long the probe will wait for a message.
func (c *Console) Waiting(wait time.Duration) {
	c.printf("\nWaiting for messages (%s)...\n", formatWait(wait))
}

// Message prints a received payload. Binary frames are quoted byte strings.
func (c *Console) Message(binary bool, payload []byte) {
	if binary {
		c.printf("  Received: %q\n", payload)
		return
	}
	c.printf("  Received: %s\n", payload)
}

// NoMessage prints the notice for a wait that ended without a message.
func (c *Console) NoMessage() {
	c.printf("  (No immediate messages received)\n")
}

// Outcome prints the result of a probe. err is the error returned by Probe.
func (c *Console) Outcome(err error) {
	switch prober.KindOf(err) {
	case prober.KindNone:
		c.printf("\n✓ WebSocket connection is working!\n")
		c.printf("\nServer is responding correctly!\n")
		return
	case prober.KindRefused:
		c.printf("✗ Connection refused - is the server running?\n")
	case prober.KindTimeout:
		c.printf("✗ Timed out: %v\n", cause(err))
	case prober.KindInterrupted:
		c.printf("\n\nTest interrupted by user\n")
		return
	default:
		c.printf("✗ Error: %v\n", cause(err))
	}
	c.printf("\nServer test failed!\n")
}

// Failure prints a failure that happened before a probe could start.
func (c *Console) Failure(err error) {
	c.printf("✗ Error: %v\n\nServer test failed!\n", err)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// cause strips the ProbeError envelope so the description is not repeated.
func cause(err error) error {
	var pe *prober.ProbeError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err
	}
	return err
}

func formatWait(d time.Duration) string {
	if d%time.Second == 0 {
		secs := int(d / time.Second)
		if secs == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	return d.String()
}
