// Package notify fans a message out to the followers of a user on a best-effort basis.
// Delivery is at most once: no retries, no queue, no ordering across recipients.
package notify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"storyapi/internal/logging"
	"storyapi/internal/metrics"
	"storyapi/internal/model"
)

var tracer = otel.Tracer("storyapi/internal/notify")

// SubscriberResolver returns the recipients to notify for an acting user.
type SubscriberResolver interface {
	Followers(ctx context.Context, userID string) ([]model.Recipient, error)
}

// Directory answers per-user profile lookups.
type Directory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
	PushToken(ctx context.Context, userID string) (string, error)
}

// Notifier delivers a single push message.
type Notifier interface {
	Send(ctx context.Context, msg model.PushMessage) error
}

// Options tunes a Dispatcher. Zero values mean sequential delivery without throttling.
type Options struct {
	// Concurrency bounds in-flight Notifier calls per dispatch.
	Concurrency int
	// RatePerSec throttles Notifier calls across all dispatches; 0 disables throttling.
	RatePerSec float64
	Logger     *zap.Logger
	Metrics    *metrics.Pipeline
}

// Dispatcher notifies followers. It is safe for concurrent use.
type Dispatcher struct {
	subs        SubscriberResolver
	dir         Directory
	notifier    Notifier
	concurrency int
	limiter     *rate.Limiter
	log         *zap.Logger
	metrics     *metrics.Pipeline
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(subs SubscriberResolver, dir Directory, notifier Notifier, opts Options) *Dispatcher {
	d := &Dispatcher{
		subs:        subs,
		dir:         dir,
		notifier:    notifier,
		concurrency: opts.Concurrency,
		log:         logging.OrNop(opts.Logger).Named("notify"),
		metrics:     opts.Metrics,
	}
	if d.concurrency <= 0 {
		d.concurrency = 1
	}
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return d
}

// NotifyFollowers tells every follower of actorID that they did something described by suffix.
// Only a failure to resolve the recipient set is returned; per-recipient failures are logged.
func (d *Dispatcher) NotifyFollowers(ctx context.Context, actorID, suffix string) error {
	_, err := d.Dispatch(ctx, actorID, suffix)
	return err
}

// Dispatch runs one notification pass and reports what happened per recipient.
func (d *Dispatcher) Dispatch(ctx context.Context, actorID, suffix string) ([]model.NotificationAttempt, error) {
	ctx, span := tracer.Start(ctx, "notify.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("actor_id", actorID))

	recipients, err := d.subs.Followers(ctx, actorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve followers")
		return nil, fmt.Errorf("resolve followers of %s: %w", actorID, err)
	}
	span.SetAttributes(attribute.Int("recipients", len(recipients)))
	if len(recipients) == 0 {
		return nil, nil
	}

	sender, err := d.dir.DisplayName(ctx, actorID)
	if err != nil {
		d.log.Warn("sender_lookup_failed", zap.String("actor_id", actorID), zap.Error(err))
	}

	attempts := make([]model.NotificationAttempt, len(recipients))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, rc := range recipients {
		g.Go(func() error {
			attempts[i] = d.attempt(ctx, rc, sender, suffix)
			return nil
		})
	}
	_ = g.Wait()

	return attempts, nil
}

// attempt notifies one recipient. It never panics and never returns an error:
// the outcome is carried in the returned attempt.
func (d *Dispatcher) attempt(ctx context.Context, rc model.Recipient, sender, suffix string) (a model.NotificationAttempt) {
	a = model.NotificationAttempt{
		Recipient: rc,
		Message:   rc.DisplayName + " " + suffix,
	}
	defer func() {
		if r := recover(); r != nil {
			a.Outcome, a.Reason = model.OutcomeFailure, fmt.Sprintf("panic: %v", r)
		}
		d.record(a)
	}()

	if rc.UserID == "" {
		a.Outcome, a.Reason = model.OutcomeFailure, "malformed recipient: missing user id"
		return a
	}

	token := rc.PushToken
	if token == "" {
		var err error
		if token, err = d.dir.PushToken(ctx, rc.UserID); err != nil {
			a.Outcome, a.Reason = model.OutcomeFailure, "push token lookup: "+err.Error()
			return a
		}
	}
	if token == "" {
		a.Outcome, a.Reason = model.OutcomeSkipped, "no push token"
		return a
	}
	a.Recipient.PushToken = token

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			a.Outcome, a.Reason = model.OutcomeFailure, "throttled: "+err.Error()
			return a
		}
	}

	if err := d.notifier.Send(ctx, model.PushMessage{Token: token, Sender: sender, Body: a.Message}); err != nil {
		a.Outcome, a.Reason = model.OutcomeFailure, err.Error()
		return a
	}
	a.Outcome = model.OutcomeSuccess
	return a
}

func (d *Dispatcher) record(a model.NotificationAttempt) {
	d.metrics.ObserveNotification(string(a.Outcome))
	fields := []zap.Field{
		zap.String("recipient_id", a.Recipient.UserID),
		zap.String("outcome", string(a.Outcome)),
	}
	switch a.Outcome {
	case model.OutcomeFailure:
		d.log.Warn("notification_failed", append(fields, zap.String("reason", a.Reason))...)
	case model.OutcomeSkipped:
		d.log.Info("notification_skipped", append(fields, zap.String("reason", a.Reason))...)
	default:
		d.log.Debug("notification_sent", fields...)
	}
}
