package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "agencyhub/contracts/mq"
	"agencyhub/internal/apperr"
)

type stubDeliverer struct {
	err   error
	calls int
}

func (d *stubDeliverer) Deliver(context.Context, mqcontracts.NotificationRequestedPayload) error {
	d.calls++
	return d.err
}

type memCounter struct {
	counts map[string]int64
}

func (c *memCounter) IncrementAndGet(_ context.Context, key string) (int64, error) {
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCounter) Reset(_ context.Context, key string) error {
	delete(c.counts, key)
	return nil
}

type memDLQ struct {
	reasons []string
}

func (d *memDLQ) PublishToDLQ(_ context.Context, _ string, _ []byte, originalError string) error {
	d.reasons = append(d.reasons, originalError)
	return nil
}

func payload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.NotificationRequestedPayload{Audience: "client", To: "0812", Message: "halo"})
	require.NoError(t, err)
	return raw
}

func TestHandle_Success(t *testing.T) {
	deliverer := &stubDeliverer{}
	dlq := &memDLQ{}
	h := NewNotificationRequestedHandler(deliverer, &memCounter{counts: map[string]int64{}}, dlq, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), payload(t)))
	assert.Equal(t, 1, deliverer.calls)
	assert.Empty(t, dlq.reasons)
}

func TestHandle_RetryableThenDeadLettered(t *testing.T) {
	deliverer := &stubDeliverer{err: &apperr.ProviderError{Provider: "fonnte", StatusCode: 503}}
	dlq := &memDLQ{}
	counter := &memCounter{counts: map[string]int64{}}
	h := NewNotificationRequestedHandler(deliverer, counter, dlq, zap.NewNop())
	raw := payload(t)

	for i := 0; i < 3; i++ {
		assert.Error(t, h.Handle(context.Background(), raw), "attempt %d should requeue", i+1)
	}
	assert.NoError(t, h.Handle(context.Background(), raw))
	require.Len(t, dlq.reasons, 1)
	assert.Contains(t, dlq.reasons[0], "provider returned 503")
	assert.Empty(t, counter.counts)
}

func TestHandle_PermanentFailureGoesToDLQ(t *testing.T) {
	deliverer := &stubDeliverer{err: &apperr.ProviderError{Provider: "twilio", StatusCode: 401}}
	dlq := &memDLQ{}
	h := NewNotificationRequestedHandler(deliverer, &memCounter{counts: map[string]int64{}}, dlq, zap.NewNop())

	assert.NoError(t, h.Handle(context.Background(), payload(t)))
	assert.Len(t, dlq.reasons, 1)
}

func TestHandle_MalformedPayload(t *testing.T) {
	deliverer := &stubDeliverer{}
	dlq := &memDLQ{}
	h := NewNotificationRequestedHandler(deliverer, nil, dlq, zap.NewNop())

	assert.NoError(t, h.Handle(context.Background(), json.RawMessage(`{"to":`)))
	assert.Zero(t, deliverer.calls)
	assert.Len(t, dlq.reasons, 1)

	h = NewNotificationRequestedHandler(&stubDeliverer{err: errors.New("connection reset")}, nil, nil, zap.NewNop())
	assert.Error(t, h.Handle(context.Background(), payload(t)))
}
