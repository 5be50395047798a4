package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
)

// recorder accepts payloads equal to "ok" and rejects everything else.
type recorder struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recorder) Evaluate(_ context.Context, payload []byte) domain.Decision {
	r.mu.Lock()
	r.payloads = append(r.payloads, string(payload))
	r.mu.Unlock()

	if len(payload) > domain.MaxMessageSize {
		return domain.Reject(domain.ReasonMalformedMessage, "", "")
	}
	if string(payload) == "ok" {
		return domain.Accept("dev", "Dev", domain.ActionTrigger)
	}
	return domain.Reject(domain.ReasonInvalidCode, "dev", domain.ActionTrigger)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

func startListener(t *testing.T, network, addr string, v Evaluator) *Listener {
	t.Helper()

	l := NewListener(network, addr, v, nil, nil)
	require.NoError(t, l.Listen())

	errCh := make(chan error, 1)
	go func() { errCh <- l.Serve(context.Background()) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, l.Close(ctx))
		require.ErrorIs(t, <-errCh, ErrListenerClosed)
	})
	return l
}

func dial(t *testing.T, l *Listener) (net.Conn, *bufio.Reader) {
	t.Helper()

	conn, err := net.Dial(l.Addr().Network(), l.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn, bufio.NewReader(conn)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestFormatReply(t *testing.T) {
	require.Equal(t, "ACCEPTED\n", FormatReply(domain.Accept("d", "D", "TRIGGER")))
	require.Equal(t, "REJECTED replayed_code\n", FormatReply(domain.Reject(domain.ReasonReplayedCode, "d", "TRIGGER")))
}

func TestListenerAnswersEachLine(t *testing.T) {
	rec := &recorder{}
	l := startListener(t, "tcp", "127.0.0.1:0", rec)
	conn, r := dial(t, l)

	_, err := conn.Write([]byte("ok\r\n\nbad\nok\n"))
	require.NoError(t, err)

	require.Equal(t, "ACCEPTED\n", readLine(t, r))
	require.Equal(t, "REJECTED invalid_code\n", readLine(t, r))
	require.Equal(t, "ACCEPTED\n", readLine(t, r))
	require.Equal(t, []string{"ok", "bad", "ok"}, rec.seen())
}

func TestListenerRejectsOversizedLineAndResyncs(t *testing.T) {
	rec := &recorder{}
	l := startListener(t, "tcp", "127.0.0.1:0", rec)
	conn, r := dial(t, l)

	_, err := conn.Write([]byte(strings.Repeat("x", 3*domain.MaxMessageSize) + "\nok\n"))
	require.NoError(t, err)

	require.Equal(t, "REJECTED malformed_message\n", readLine(t, r))
	require.Equal(t, "ACCEPTED\n", readLine(t, r))
	require.Len(t, rec.seen(), 2)
}

func TestListenerAnswersUnterminatedFinalMessage(t *testing.T) {
	rec := &recorder{}
	l := startListener(t, "tcp", "127.0.0.1:0", rec)
	conn, r := dial(t, l)

	_, err := conn.Write([]byte("ok"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.Equal(t, "ACCEPTED\n", readLine(t, r))
}

func TestListenerUnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trigger.sock")
	l := startListener(t, "unix", path, &recorder{})
	conn, r := dial(t, l)

	_, err := conn.Write([]byte("ok\n"))
	require.NoError(t, err)
	require.Equal(t, "ACCEPTED\n", readLine(t, r))
}

func TestCloseWaitsForIdleConnections(t *testing.T) {
	l := NewListener("tcp", "127.0.0.1:0", &recorder{}, nil, nil)
	require.NoError(t, l.Listen())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Serve(context.Background()) }()

	conn, r := dial(t, l)
	_, err := conn.Write([]byte("ok\n"))
	require.NoError(t, err)
	require.Equal(t, "ACCEPTED\n", readLine(t, r))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Close(ctx))
	require.ErrorIs(t, <-errCh, ErrListenerClosed)

	_, err = r.ReadString('\n')
	require.Error(t, err)
	require.ErrorIs(t, l.Listen(), ErrListenerClosed)
}

func TestListenerWithValidator(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mk, err := cryptox.GenerateMasterKey()
	require.NoError(t, err)
	cipher, err := cryptox.NewSecretCipher(mk)
	require.NoError(t, err)

	engine := otpx.New()
	reg := service.NewRegistry(st, cipher, engine, nil, "")
	v := service.NewValidator(reg, engine, st, service.NewStats(), nil, service.DefaultReplayTolerance)

	p, err := reg.Register(t.Context(), "phone", "Phone")
	require.NoError(t, err)
	secret, err := cryptox.DecodeSecret(p.Secret)
	require.NoError(t, err)

	now := time.Now()
	code, err := engine.CurrentCode(secret, now)
	require.NoError(t, err)
	msg, err := json.Marshal(domain.AuthMessage{DeviceID: "phone", TOTP: code, Timestamp: now.Unix(), Action: domain.ActionTrigger})
	require.NoError(t, err)

	l := startListener(t, "tcp", "127.0.0.1:0", v)
	conn, r := dial(t, l)

	_, err = conn.Write(append(msg, '\n'))
	require.NoError(t, err)
	require.Equal(t, "ACCEPTED\n", readLine(t, r))

	_, err = conn.Write(append(msg, '\n'))
	require.NoError(t, err)
	require.Equal(t, "REJECTED replayed_code\n", readLine(t, r))

	_, err = conn.Write([]byte("{not json}\n"))
	require.NoError(t, err)
	require.Equal(t, "REJECTED malformed_message\n", readLine(t, r))
}
