package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want ErrorKind
	}{
		{name: "nil", ctx: context.Background(), err: nil, want: KindNone},
		{
			name: "refused",
			ctx:  context.Background(),
			err: &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{
				Syscall: "connect", Err: syscall.ECONNREFUSED,
			}},
			want: KindRefused,
		},
		{
			name: "wrapped refused",
			ctx:  context.Background(),
			err:  fmt.Errorf("dial: %w", syscall.ECONNREFUSED),
			want: KindRefused,
		},
		{name: "canceled", ctx: context.Background(), err: context.Canceled, want: KindInterrupted},
		{name: "context done", ctx: cancelled, err: errors.New("use of closed network connection"), want: KindInterrupted},
		{name: "deadline", ctx: context.Background(), err: context.DeadlineExceeded, want: KindTimeout},
		{name: "net timeout", ctx: context.Background(), err: &net.OpError{Op: "dial", Err: timeoutErr{}}, want: KindTimeout},
		{name: "dns", ctx: context.Background(), err: &net.DNSError{Err: "no such host", Name: "relay.invalid", IsNotFound: true}, want: KindOther},
		{name: "generic", ctx: context.Background(), err: errors.New("tls: handshake failure"), want: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ctx, tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "refused", KindRefused.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "interrupted", KindInterrupted.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "other", ErrorKind(42).String())
}

func TestProbeError(t *testing.T) {
	cause := errors.New("boom")
	err := &ProbeError{Kind: KindOther, Endpoint: "ws://relay:1259", Err: cause}

	assert.Equal(t, "probe ws://relay:1259 failed (other): boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "probe ws://relay:1259 failed (refused)", (&ProbeError{Kind: KindRefused, Endpoint: "ws://relay:1259"}).Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindOther, KindOf(errors.New("plain")))
	assert.Equal(t, KindRefused, KindOf(fmt.Errorf("wrapped: %w", &ProbeError{Kind: KindRefused})))
}
