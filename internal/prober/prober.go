package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relayprobe/internal/models"
)

const (
	defaultMessageWait = 5 * time.Second
	closeGracePeriod   = time.Second
)

// Observer is notified as a probe makes progress.
type Observer interface {
	Connecting(endpoint string)
	Connected(remoteAddr string)
	Waiting(wait time.Duration)
	Message(binary bool, payload []byte)
	NoMessage()
}

// Options tune a Prober. Zero values fall back to defaults.
type Options struct {
	MessageWait      time.Duration
	HandshakeTimeout time.Duration
	Logger           *zerolog.Logger
	// NetDialContext replaces the TCP dial when set.
	NetDialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Prober opens one WebSocket connection per Probe call and waits briefly for a message.
type Prober struct {
	dialer      *websocket.Dialer
	messageWait time.Duration
	observer    Observer
	log         zerolog.Logger
}

// New configures a prober. A nil observer discards progress events.
func New(opts Options, observer Observer) *Prober {
	wait := opts.MessageWait
	if wait <= 0 {
		wait = defaultMessageWait
	}
	handshake := opts.HandshakeTimeout
	if handshake <= 0 {
		handshake = websocket.DefaultDialer.HandshakeTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Prober{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshake,
			NetDialContext:   opts.NetDialContext,
		},
		messageWait: wait,
		observer:    observer,
		log:         log,
	}
}

// Probe connects to endpoint, waits up to the configured duration for one
// inbound message and closes the connection. A missing message is not a
// failure. Every failure is returned as a *ProbeError.
func (p *Prober) Probe(ctx context.Context, endpoint string) (models.ProbeResult, error) {
	endpoint = strings.TrimSpace(endpoint)
	result := models.ProbeResult{
		Endpoint:  endpoint,
		CheckedAt: time.Now().UTC(),
	}
	fail := func(kind ErrorKind, err error) (models.ProbeResult, error) {
		result.OK = false
		result.Kind = kind.String()
		result.Error = err.Error()
		p.log.Debug().Str("kind", result.Kind).Err(err).Msg("probe failed")
		return result, &ProbeError{Kind: kind, Endpoint: endpoint, Err: err}
	}

	p.observer.Connecting(endpoint)
	if err := validateEndpoint(endpoint); err != nil {
		return fail(KindOther, err)
	}

	started := time.Now()
	conn, resp, err := p.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			err = fmt.Errorf("%w (http %d)", err, resp.StatusCode)
		}
		return fail(Classify(ctx, err), err)
	}
	defer func() {
		deadline := time.Now().Add(closeGracePeriod)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		if err := conn.Close(); err != nil {
			p.log.Debug().Err(err).Msg("close connection")
		}
	}()

	result.LatencyMs = int64(time.Since(started) / time.Millisecond)
	result.RemoteAddr = conn.RemoteAddr().String()
	p.log.Debug().
		Str("remote_addr", result.RemoteAddr).
		Int64("latency_ms", result.LatencyMs).
		Msg("connected")
	p.observer.Connected(result.RemoteAddr)

	p.observer.Waiting(p.messageWait)
	msgType, payload, received, err := p.awaitMessage(ctx, conn)
	if err != nil {
		return fail(Classify(ctx, err), err)
	}
	if received {
		result.Received = true
		result.Binary = msgType == websocket.BinaryMessage
		result.Message = payload
		p.observer.Message(result.Binary, payload)
	} else {
		p.observer.NoMessage()
	}

	result.OK = true
	return result, nil
}

// awaitMessage reads a single message. Reaching the wait deadline yields
// received=false with a nil error; cancelling ctx unblocks the read at once.
func (p *Prober) awaitMessage(ctx context.Context, conn *websocket.Conn) (int, []byte, bool, error) {
	if err := conn.SetReadDeadline(time.Now().Add(p.messageWait)); err != nil {
		return 0, nil, false, fmt.Errorf("set read deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	msgType, payload, err := conn.ReadMessage()
	if err == nil {
		return msgType, payload, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, nil, false, ctxErr
	}
	if isDeadline(err) {
		p.log.Debug().Dur("wait", p.messageWait).Msg("no message before deadline")
		return 0, nil, false, nil
	}
	return 0, nil, false, fmt.Errorf("read message: %w", err)
}

func isDeadline(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrMalformedEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrMalformedEndpoint)
	}
	return nil
}

type nopObserver struct{}

func (nopObserver) Connecting(string)     {}
func (nopObserver) Connected(string)      {}
func (nopObserver) Waiting(time.Duration) {}
func (nopObserver) Message(bool, []byte)  {}
func (nopObserver) NoMessage()            {}
