package mqhandler

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"

	"go.uber.org/zap"

	mqcontracts "agencyhub/contracts/mq"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/util"
)

const (
	handlerName       = "notification_requested"
	defaultMaxRetries = 3
)

type Deliverer interface {
	Deliver(ctx context.Context, msg mqcontracts.NotificationRequestedPayload) error
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, originalError string) error
}

type NotificationRequestedHandler struct {
	deliverer  Deliverer
	retries    RetryCounter
	dlq        DeadLetterPublisher
	maxRetries int64
	logger     *zap.Logger
}

func NewNotificationRequestedHandler(deliverer Deliverer, retries RetryCounter, dlq DeadLetterPublisher, logger *zap.Logger) *NotificationRequestedHandler {
	return &NotificationRequestedHandler{
		deliverer:  deliverer,
		retries:    retries,
		dlq:        dlq,
		maxRetries: defaultMaxRetries,
		logger:     logger,
	}
}

// Handle delivers one queued message. Returning an error requeues it;
// permanent failures and exhausted retries go to the dead-letter queue and
// are acked.
func (h *NotificationRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var msg mqcontracts.NotificationRequestedPayload
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Error("Failed to unmarshal notification payload", zap.Error(err))
		return h.deadLetter(ctx, raw, err)
	}

	log.Info("Delivering queued notification",
		zap.String("audience", msg.Audience),
		zap.Stringp("lead_id", msg.LeadID),
		zap.Stringp("project_id", msg.ProjectID),
	)

	err := h.deliverer.Deliver(ctx, msg)
	key := util.FormatRetryKey(handlerName, messageID(raw))
	if err == nil {
		if h.retries != nil {
			_ = h.retries.Reset(ctx, key)
		}
		return nil
	}

	retryable, kind := util.IsRetryableError(err)
	if !retryable {
		log.Warn("Notification failed permanently", zap.String("error_kind", kind), zap.Error(err))
		return h.deadLetter(ctx, raw, err)
	}

	if h.retries == nil {
		return err
	}
	count, cerr := h.retries.IncrementAndGet(ctx, key)
	if cerr != nil {
		log.Warn("Retry counter unavailable, requeueing", zap.Error(cerr))
		return err
	}
	if !util.ShouldRetry(count, h.maxRetries, retryable) {
		log.Warn("Notification retries exhausted",
			zap.Int64("attempts", count),
			zap.String("error_kind", kind),
		)
		_ = h.retries.Reset(ctx, key)
		return h.deadLetter(ctx, raw, err)
	}

	log.Info("Notification will be retried",
		zap.Int64("attempt", count),
		zap.String("error_kind", kind),
	)
	return err
}

func (h *NotificationRequestedHandler) deadLetter(ctx context.Context, raw []byte, cause error) error {
	if h.dlq == nil {
		return nil
	}
	if err := h.dlq.PublishToDLQ(ctx, mqcontracts.RoutingKeyNotificationRequested, raw, cause.Error()); err != nil {
		logger.WithTrace(ctx, h.logger).Error("Failed to publish to DLQ", zap.Error(err))
		return err
	}
	return nil
}

// messageID derives a stable counter id from the message body.
func messageID(raw []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return strconv.FormatUint(h.Sum64(), 16)
}
