// Package notification renders and delivers the WhatsApp messages sent on
// lead intake and project status changes.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "agencyhub/contracts/mq"
	"agencyhub/internal/model"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/metrics"
	"agencyhub/pkg/trace"
)

const (
	ModeDirect = "direct"
	ModeQueue  = "queue"

	aggregateNotification = "notification"
)

// AttemptRecorder stores the audit row of every delivery try.
type AttemptRecorder interface {
	Insert(ctx context.Context, a *model.NotificationAttempt) error
}

// Enqueuer writes a message into the transactional outbox.
type Enqueuer interface {
	Enqueue(ctx context.Context, aggregateType string, aggregateID *string, routingKey string, payload interface{}) (int64, error)
}

type Notifier struct {
	provider       Provider
	attempts       AttemptRecorder
	outbox         Enqueuer
	mode           string
	businessNumber string
	now            func() time.Time
	logger         *zap.Logger
}

type Options struct {
	Mode           string
	BusinessNumber string
}

// NewNotifier wires the dispatcher. attempts and outbox may be nil; queue
// mode without an outbox falls back to direct delivery.
func NewNotifier(provider Provider, attempts AttemptRecorder, outbox Enqueuer, opts Options, logger *zap.Logger) *Notifier {
	mode := opts.Mode
	if mode != ModeQueue || outbox == nil {
		mode = ModeDirect
	}
	return &Notifier{
		provider:       provider,
		attempts:       attempts,
		outbox:         outbox,
		mode:           mode,
		businessNumber: opts.BusinessNumber,
		now:            time.Now,
		logger:         logger,
	}
}

func (n *Notifier) Mode() string {
	return n.mode
}

// NotifyBusiness alerts the agency number about a new lead.
func (n *Notifier) NotifyBusiness(ctx context.Context, lead model.Lead) error {
	if n.businessNumber == "" {
		return fmt.Errorf("notify business: no business number configured")
	}
	return n.dispatch(ctx, mqcontracts.NotificationRequestedPayload{
		LeadID:   model.NilIfEmpty(lead.ID),
		Audience: string(model.AudienceBusiness),
		To:       n.businessNumber,
		Message:  BusinessMessage(lead),
	})
}

// NotifyClient confirms receipt to the lead. It is a no-op without a phone
// number.
func (n *Notifier) NotifyClient(ctx context.Context, lead model.Lead) error {
	phone := model.Deref(lead.PhoneNumber)
	if phone == "" {
		logger.WithTrace(ctx, n.logger).Debug("Client notification skipped, no phone number",
			zap.String("lead_id", lead.ID),
		)
		return nil
	}
	return n.dispatch(ctx, mqcontracts.NotificationRequestedPayload{
		LeadID:   model.NilIfEmpty(lead.ID),
		Audience: string(model.AudienceClient),
		To:       phone,
		Message:  ClientMessage(lead),
	})
}

// NotifyStatusChange tells the project's client about a status move. It is
// a no-op when the project has no client phone.
func (n *Notifier) NotifyStatusChange(ctx context.Context, project model.Project, from, to model.ProjectStatus) error {
	phone := model.Deref(project.ClientPhone)
	if phone == "" {
		logger.WithTrace(ctx, n.logger).Debug("Status notification skipped, no client phone",
			zap.String("project_id", project.ID),
		)
		return nil
	}
	return n.dispatch(ctx, mqcontracts.NotificationRequestedPayload{
		LeadID:    project.LeadID,
		ProjectID: &project.ID,
		Audience:  string(model.AudienceClient),
		To:        phone,
		Message:   StatusChangeMessage(project, from, to),
	})
}

// FanoutResult reports the outcome of each leg of NotifyLeadFanout.
type FanoutResult struct {
	Mode          string `json:"mode"`
	BusinessSent  bool   `json:"business_sent"`
	BusinessError string `json:"business_error,omitempty"`
	ClientSent    bool   `json:"client_sent"`
	ClientSkipped bool   `json:"client_skipped"`
	ClientError   string `json:"client_error,omitempty"`
}

// NotifyLeadFanout sends both the business alert and the client
// confirmation and reports each outcome. One leg failing does not stop the
// other.
func (n *Notifier) NotifyLeadFanout(ctx context.Context, lead model.Lead) FanoutResult {
	res := FanoutResult{Mode: n.mode}

	if err := n.NotifyBusiness(ctx, lead); err != nil {
		res.BusinessError = err.Error()
	} else {
		res.BusinessSent = true
	}

	if model.Deref(lead.PhoneNumber) == "" {
		res.ClientSkipped = true
		return res
	}
	if err := n.NotifyClient(ctx, lead); err != nil {
		res.ClientError = err.Error()
	} else {
		res.ClientSent = true
	}
	return res
}

func (n *Notifier) dispatch(ctx context.Context, msg mqcontracts.NotificationRequestedPayload) error {
	msg.RequestedAt = n.now().UTC()
	msg.TraceID = trace.FromContext(ctx)

	if n.mode == ModeQueue {
		return n.enqueue(ctx, msg)
	}
	return n.Deliver(ctx, msg)
}

func (n *Notifier) enqueue(ctx context.Context, msg mqcontracts.NotificationRequestedPayload) error {
	log := logger.WithTrace(ctx, n.logger)

	aggregateID := msg.LeadID
	if msg.ProjectID != nil {
		aggregateID = msg.ProjectID
	}
	eventID, err := n.outbox.Enqueue(ctx, aggregateNotification, aggregateID, mqcontracts.RoutingKeyNotificationRequested, msg)
	if err != nil {
		log.Error("Failed to enqueue notification", zap.String("audience", msg.Audience), zap.Error(err))
		n.record(ctx, msg, model.AttemptFailed, err)
		return fmt.Errorf("enqueue notification: %w", err)
	}

	log.Info("Notification queued",
		zap.Int64("event_id", eventID),
		zap.String("audience", msg.Audience),
	)
	n.record(ctx, msg, model.AttemptQueued, nil)
	return nil
}

// Deliver sends msg through the provider now and records the attempt. The
// worker calls it for queued messages.
func (n *Notifier) Deliver(ctx context.Context, msg mqcontracts.NotificationRequestedPayload) error {
	log := logger.WithTrace(ctx, n.logger)

	err := n.provider.Send(ctx, msg.To, msg.Message)
	if err != nil {
		log.Warn("Notification delivery failed",
			zap.String("provider", n.provider.Name()),
			zap.String("audience", msg.Audience),
			zap.Error(err),
		)
		n.record(ctx, msg, model.AttemptFailed, err)
		return err
	}

	log.Info("Notification delivered",
		zap.String("provider", n.provider.Name()),
		zap.String("audience", msg.Audience),
	)
	n.record(ctx, msg, model.AttemptSent, nil)
	return nil
}

func (n *Notifier) record(ctx context.Context, msg mqcontracts.NotificationRequestedPayload, status string, cause error) {
	metrics.IncrementNotification(n.provider.Name(), msg.Audience, status)
	if n.attempts == nil {
		return
	}

	attempt := &model.NotificationAttempt{
		LeadID:    msg.LeadID,
		ProjectID: msg.ProjectID,
		Audience:  model.Audience(msg.Audience),
		Provider:  n.provider.Name(),
		ToNumber:  NormalizeNumber(msg.To),
		Status:    status,
	}
	if cause != nil {
		errText := cause.Error()
		attempt.Error = &errText
	}
	if err := n.attempts.Insert(ctx, attempt); err != nil {
		logger.WithTrace(ctx, n.logger).Warn("Failed to record notification attempt", zap.Error(err))
	}
}
