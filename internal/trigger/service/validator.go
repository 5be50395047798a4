package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/idx"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

// DefaultReplayTolerance is the accepted distance between a message timestamp
// and the local clock.
const DefaultReplayTolerance = 300 * time.Second

const (
	deviceIDRules   = "required,deviceid"
	deviceNameRules = "max=64"

	// maxDeviceName matches deviceNameRules.
	maxDeviceName = 64
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("deviceid", func(fl validator.FieldLevel) bool {
		return deviceIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator decides whether an inbound trigger payload is authentic. It is the
// single entry point for every transport.
type Validator struct {
	Registry        *Registry
	Engine          *otpx.Engine
	Store           store.Store
	Stats           *Stats
	Logger          *slog.Logger
	ReplayTolerance time.Duration
	Now             func() time.Time
}

func NewValidator(reg *Registry, engine *otpx.Engine, st store.Store, stats *Stats, logger *slog.Logger, tolerance time.Duration) *Validator {
	if logger == nil {
		logger = slogx.Discard()
	}
	if tolerance <= 0 {
		tolerance = DefaultReplayTolerance
	}
	return &Validator{
		Registry:        reg,
		Engine:          engine,
		Store:           st,
		Stats:           stats,
		Logger:          logger,
		ReplayTolerance: tolerance,
		Now:             time.Now,
	}
}

// stepResult is the outcome of one validation step. The zero value passes.
type stepResult struct {
	reason domain.Reason
	err    error
}

func (r stepResult) passed() bool { return r.reason == domain.ReasonNone }

func fail(reason domain.Reason, err error) stepResult {
	return stepResult{reason: reason, err: err}
}

// Evaluate runs every check in order and stops at the first failure. It never
// returns an error: internal failures become internal_error rejections. Each
// call writes exactly one audit event.
func (v *Validator) Evaluate(ctx context.Context, payload []byte) domain.Decision {
	now := v.Now()

	msg, res := v.decode(payload)
	if !res.passed() {
		return v.conclude(ctx, domain.Reject(res.reason, "", ""), res.err, now)
	}

	var (
		decision domain.Decision
		cause    error
	)
	err := v.Registry.Exclusive(ctx, msg.DeviceID, func(s *DeviceSession) error {
		res := v.authenticate(s, msg, now)
		if !res.passed() {
			decision = domain.Reject(res.reason, msg.DeviceID, msg.Action)
			cause = res.err
			return nil
		}
		decision = domain.Accept(msg.DeviceID, s.name, msg.Action)
		return nil
	})
	if err != nil {
		decision = domain.Reject(domain.ReasonInternalError, msg.DeviceID, msg.Action)
		cause = err
	}

	return v.conclude(ctx, decision, cause, now)
}

func (v *Validator) decode(payload []byte) (domain.AuthMessage, stepResult) {
	var msg domain.AuthMessage

	if len(payload) == 0 || len(payload) > domain.MaxMessageSize {
		return msg, fail(domain.ReasonMalformedMessage, fmt.Errorf("payload size %d out of range", len(payload)))
	}

	if err := checkMessageKeys(payload); err != nil {
		return msg, fail(domain.ReasonMalformedMessage, err)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		return msg, fail(domain.ReasonMalformedMessage, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return msg, fail(domain.ReasonMalformedMessage, errors.New("trailing data after message"))
	}
	if err := validate.Struct(msg); err != nil {
		return msg, fail(domain.ReasonMalformedMessage, err)
	}

	return msg, stepResult{}
}

var messageKeys = map[string]bool{"device_id": true, "totp": true, "timestamp": true, "action": true}

// checkMessageKeys walks the top-level object and requires every key to be
// spelled exactly and to appear once. encoding/json alone folds case and
// keeps the last duplicate.
func checkMessageKeys(payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return errors.New("message is not an object")
	}

	seen := make(map[string]bool, len(messageKeys))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if !messageKeys[key] {
			return fmt.Errorf("unexpected field %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = true

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) authenticate(s *DeviceSession, msg domain.AuthMessage, now time.Time) stepResult {
	dev, err := s.Lookup()
	if errors.Is(err, ErrUnknownDevice) {
		return fail(domain.ReasonUnknownDevice, err)
	}
	if err != nil {
		return fail(domain.ReasonInternalError, err)
	}
	defer dev.Secret.Wipe()

	if !v.fresh(msg.Timestamp, now) {
		return fail(domain.ReasonStaleOrFutureTimestamp, nil)
	}

	step, ok := v.Engine.Match(dev.Secret, msg.TOTP, now)
	if !ok {
		return fail(domain.ReasonInvalidCode, nil)
	}

	fresh, err := s.MarkAuthenticated(step, now.Add(v.usedCodeTTL()), now)
	if err != nil {
		return fail(domain.ReasonInternalError, err)
	}
	if !fresh {
		return fail(domain.ReasonReplayedCode, nil)
	}

	s.name = dev.Name
	return stepResult{}
}

// fresh reports whether ts lies within ReplayTolerance of now, in either direction.
func (v *Validator) fresh(ts int64, now time.Time) bool {
	tolerance := int64(v.ReplayTolerance / time.Second)
	delta := now.Unix() - ts
	return delta <= tolerance && delta >= -tolerance
}

// usedCodeTTL outlives every moment at which the same step could still be
// accepted, so a consumed step is never forgotten while it is replayable.
func (v *Validator) usedCodeTTL() time.Duration {
	return v.ReplayTolerance + time.Duration(v.Engine.Skew()+1)*v.Engine.Period()
}

func (v *Validator) conclude(ctx context.Context, d domain.Decision, cause error, now time.Time) domain.Decision {
	event := domain.AuditEventFor(idx.NewAt(now).String(), d, now)

	// The audit trail must be written even when the caller has gone away.
	if err := v.Store.AuditEvents().CreateAuditEvent(context.WithoutCancel(ctx), event); err != nil {
		v.Logger.Error("failed to write audit event", "event_id", event.ID, "error", err)
	}

	if v.Stats != nil {
		v.Stats.Record(d)
	}

	attrs := []any{
		"event_id", event.ID,
		"device_id", event.DeviceID,
		"outcome", event.Outcome,
		"action", event.Action,
	}
	switch {
	case d.Accepted():
		v.Logger.Info("trigger accepted", attrs...)
	case d.Reason == domain.ReasonInternalError:
		v.Logger.Error("trigger evaluation failed", append(attrs, "reason", d.Reason, "error", cause)...)
	case errors.Is(cause, cryptox.ErrTamperedOrCorrupt):
		v.Logger.Error("trigger rejected", append(attrs, "reason", d.Reason, "error", cause)...)
	default:
		v.Logger.Warn("trigger rejected", append(attrs, "reason", d.Reason)...)
	}

	return d
}
