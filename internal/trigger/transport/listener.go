// Package transport delivers raw trigger payloads from a stream socket to the
// Validator. Each newline-terminated payload is one authentication message and
// gets exactly one reply line: "ACCEPTED" or "REJECTED <reason>".
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
)

const (
	DefaultIdleTimeout = 2 * time.Minute
	writeTimeout       = 10 * time.Second
)

var ErrListenerClosed = errors.New("transport: listener closed")

// Evaluator decides one raw payload.
type Evaluator interface {
	Evaluate(ctx context.Context, payload []byte) domain.Decision
}

// Listener accepts stream connections (tcp or unix) from the wireless bridge.
type Listener struct {
	Network     string
	Address     string
	Validator   Evaluator
	Actions     *service.ActionRunner // nil disables hook dispatch
	Logger      *slog.Logger
	IdleTimeout time.Duration

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewListener(network, address string, v Evaluator, actions *service.ActionRunner, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slogx.Discard()
	}
	return &Listener{
		Network:     network,
		Address:     address,
		Validator:   v,
		Actions:     actions,
		Logger:      logger,
		IdleTimeout: DefaultIdleTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket. A stale unix socket file is removed first and the
// new one is made owner-only.
func (l *Listener) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrListenerClosed
	}
	if l.ln != nil {
		return errors.New("transport: already listening")
	}

	if l.Network == "unix" {
		if err := os.Remove(l.Address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen(l.Network, l.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s %s: %w", l.Network, l.Address, err)
	}

	if l.Network == "unix" {
		if err := os.Chmod(l.Address, 0o600); err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to restrict socket permissions: %w", err)
		}
	}

	l.ln = ln
	return nil
}

// Addr is the bound address, or nil before Listen.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Serve accepts connections until Close. It always returns a non-nil error;
// after Close that error is ErrListenerClosed.
func (l *Listener) Serve(ctx context.Context) error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	if ln == nil {
		if err := l.Listen(); err != nil {
			return err
		}
		l.mu.Lock()
		ln = l.ln
		l.mu.Unlock()
	}

	l.Logger.Info("transport listening", "network", l.Network, "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if l.isClosed() {
				return ErrListenerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				l.Logger.Warn("transport accept failed, retrying", "error", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("transport accept: %w", err)
		}

		if !l.track(conn) {
			_ = conn.Close()
			return ErrListenerClosed
		}
		go l.handle(ctx, conn)
	}
}

func (l *Listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Listener) track(conn net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.conns[conn] = struct{}{}
	l.wg.Add(1)
	return true
}

func (l *Listener) untrack(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
	l.wg.Done()
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer l.untrack(conn)
	defer conn.Close()

	log := l.Logger.With("conn_id", uuid.NewString(), "remote_addr", conn.RemoteAddr().String())
	ctx = slogx.WithContext(ctx, log)
	log.Debug("transport connection opened")

	// One byte of headroom so an oversized line reaches the validator as such.
	r := bufio.NewReaderSize(conn, domain.MaxMessageSize+1)
	for {
		if l.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(l.IdleTimeout))
		}

		line, err := r.ReadSlice('\n')
		oversized := errors.Is(err, bufio.ErrBufferFull)
		if err != nil && !oversized {
			if len(line) > 0 && errors.Is(err, io.EOF) {
				// Unterminated final message: still answer it.
				l.reply(ctx, conn, log, line)
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Debug("transport connection ended", "error", err)
			}
			return
		}

		payload := trimEOL(line)
		if len(payload) == 0 && !oversized {
			continue
		}

		if !l.reply(ctx, conn, log, payload) {
			return
		}
		if oversized && !skipLine(r) {
			return
		}
	}
}

// skipLine discards the remainder of an oversized line so framing resumes at
// the next message.
func skipLine(r *bufio.Reader) bool {
	for {
		_, err := r.ReadSlice('\n')
		if err == nil {
			return true
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return false
		}
	}
}

// reply evaluates one payload and writes the answer line. It reports whether
// the write succeeded.
func (l *Listener) reply(ctx context.Context, conn net.Conn, log *slog.Logger, payload []byte) bool {
	d := l.Validator.Evaluate(ctx, payload)
	if l.Actions != nil {
		l.Actions.Dispatch(d)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := io.WriteString(conn, FormatReply(d)); err != nil {
		log.Warn("failed to write transport reply", "error", err)
		return false
	}
	return true
}

// FormatReply renders the wire answer for a decision.
func FormatReply(d domain.Decision) string {
	if d.Accepted() {
		return "ACCEPTED\n"
	}
	return "REJECTED " + string(d.Reason) + "\n"
}

func trimEOL(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// Close stops accepting, interrupts idle reads and waits for in-flight
// connections to finish their current message or for ctx to end.
func (l *Listener) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true

	var err error
	if l.ln != nil {
		err = l.ln.Close()
	}
	for c := range l.conns {
		_ = c.SetReadDeadline(time.Now())
	}
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		l.mu.Lock()
		for c := range l.conns {
			_ = c.Close()
		}
		l.mu.Unlock()
		<-done
		return ctx.Err()
	}

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
