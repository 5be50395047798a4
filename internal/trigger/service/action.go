package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
)

const DefaultActionTimeout = 30 * time.Second

// maxLoggedOutput caps how much hook output ends up in a log line.
const maxLoggedOutput = 1 << 10

var ErrActionTimeout = errors.New("action timed out")

// ActionRunner executes the local hook for accepted TRIGGER decisions. The hook
// is an operator-supplied executable; it receives the device display name in
// TRIGGER_DEVICE.
type ActionRunner struct {
	Script  string // empty disables the hook
	Timeout time.Duration
	Stats   *Stats
	Logger  *slog.Logger

	wg sync.WaitGroup
}

func NewActionRunner(script string, timeout time.Duration, stats *Stats, logger *slog.Logger) *ActionRunner {
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	if logger == nil {
		logger = slogx.Discard()
	}
	return &ActionRunner{
		Script:  script,
		Timeout: timeout,
		Stats:   stats,
		Logger:  logger,
	}
}

// Run executes the hook for d if it is an accepted TRIGGER. Anything else is
// skipped. A hook failure is reported but never changes the decision.
func (r *ActionRunner) Run(ctx context.Context, d domain.Decision) error {
	if !d.Accepted() {
		return nil
	}
	if d.Action != domain.ActionTrigger {
		r.Logger.Warn("unsupported action skipped", "device_id", d.DeviceID, "action", d.Action)
		return nil
	}
	if r.Script == "" {
		r.Logger.Debug("no action script configured", "device_id", d.DeviceID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Script)
	cmd.Env = append(os.Environ(), "TRIGGER_DEVICE="+d.DeviceName)
	cmd.WaitDelay = time.Second

	started := time.Now()
	out, err := cmd.CombinedOutput()
	if len(out) > maxLoggedOutput {
		out = out[:maxLoggedOutput]
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s", ErrActionTimeout, r.Timeout)
	}
	if err != nil {
		if r.Stats != nil {
			r.Stats.ActionFailed()
		}
		r.Logger.Error("action failed",
			"device_id", d.DeviceID,
			"script", r.Script,
			"duration", time.Since(started),
			"output", string(out),
			"error", err,
		)
		return err
	}

	if r.Stats != nil {
		r.Stats.ActionExecuted()
	}
	r.Logger.Info("action executed",
		"device_id", d.DeviceID,
		"script", r.Script,
		"duration", time.Since(started),
		"output", string(out),
	)
	return nil
}

// Dispatch runs the hook in the background so transports can answer the sender
// straight away. Wait blocks until every dispatched run has finished.
func (r *ActionRunner) Dispatch(d domain.Decision) {
	if !d.Accepted() {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.Run(context.Background(), d)
	}()
}

func (r *ActionRunner) Wait() { r.wg.Wait() }
