package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "agencyhub/contracts/mq"
	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/pkg/config"
)

func strPtr(s string) *string { return &s }

func sampleLead() model.Lead {
	return model.Lead{
		ID:          "lead-1",
		ShortID:     "AB12CD",
		Name:        "Budi",
		Address:     "Jakarta",
		ServiceType: model.ServiceWebsite,
		PhoneNumber: strPtr("081234567890"),
		Features:    strPtr("login, payment"),
		SubmittedAt: time.Date(2025, 3, 4, 7, 5, 0, 0, time.UTC),
	}
}

func TestFormatTanggal(t *testing.T) {
	assert.Equal(t, "04 Maret 2025 14:05", FormatTanggal(time.Date(2025, 3, 4, 7, 5, 0, 0, time.UTC)))
	assert.Equal(t, "01 Januari 2026 06:30", FormatTanggal(time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)))
}

func TestBusinessMessage(t *testing.T) {
	msg := BusinessMessage(sampleLead())

	assert.True(t, strings.HasPrefix(msg, "📥 *New Lead Alert*\n\n"))
	assert.Contains(t, msg, "*Nama:* Budi\n")
	assert.Contains(t, msg, "*Jenis Layanan:* Website\n")
	assert.Contains(t, msg, "*No. HP:* 081234567890\n")
	assert.Contains(t, msg, "*Fitur-fitur:* login, payment\n")
	assert.NotContains(t, msg, "Anggaran")
	assert.True(t, strings.HasSuffix(msg, "_Tanggal: 04 Maret 2025 14:05_"))
}

func TestClientAndStatusMessages(t *testing.T) {
	msg := ClientMessage(sampleLead())
	assert.True(t, strings.HasPrefix(msg, "Terima kasih Budi, permintaan Anda telah kami terima!"))
	assert.Contains(t, msg, "*AB12CD*")

	project := model.Project{ClientName: "Budi", ProjectName: "Website Project for Budi", ShortID: "AB12CD"}
	status := StatusChangeMessage(project, model.StatusDiskusi, model.StatusDesain)
	assert.Contains(t, status, "Status project Website Project for Budi telah diperbarui dari Diskusi ke Desain.")
	assert.Contains(t, status, "*30%*")
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "6281234567890", NormalizeNumber("0812-3456-7890"))
	assert.Equal(t, "6283117927964", NormalizeNumber("+62 831 1792 7964"))
}

func TestNewProvider_RequiresCredentials(t *testing.T) {
	for _, name := range []string{ProviderWhatsAppBusiness, ProviderTwilio, ProviderFonnte, ProviderGeneric} {
		_, err := NewProvider(config.NotificationConfig{Provider: name}, zap.NewNop())
		assert.ErrorIs(t, err, apperr.ErrProviderNotConfigured, name)
	}

	_, err := NewProvider(config.NotificationConfig{Provider: "pigeon"}, zap.NewNop())
	assert.ErrorIs(t, err, apperr.ErrProviderNotConfigured)

	p, err := NewProvider(config.NotificationConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ProviderLog, p.Name())
}

type capturedRequest struct {
	path    string
	header  http.Header
	body    []byte
	user    string
	pass    string
	hasAuth bool
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		got.user, got.pass, got.hasAuth = r.BasicAuth()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestWhatsAppBusinessProvider(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	p, err := NewProvider(config.NotificationConfig{
		Provider:         ProviderWhatsAppBusiness,
		WhatsAppBusiness: config.WhatsAppBusinessConfig{AccessToken: "tok", PhoneNumberID: "555", BaseURL: srv.URL},
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Send(context.Background(), "081234567890", "halo"))
	assert.Equal(t, "/555/messages", got.path)
	assert.Equal(t, "Bearer tok", got.header.Get("Authorization"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "whatsapp", body["messaging_product"])
	assert.Equal(t, "6281234567890", body["to"])
	assert.Equal(t, "text", body["type"])
	assert.Equal(t, map[string]interface{}{"body": "halo"}, body["text"])
}

func TestTwilioProvider(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated)
	p, err := NewProvider(config.NotificationConfig{
		Provider:     ProviderTwilio,
		SenderNumber: "6285123968217",
		Twilio:       config.TwilioConfig{AccountSID: "AC1", AuthToken: "secret", BaseURL: srv.URL},
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Send(context.Background(), "6283117927964", "halo"))
	assert.Equal(t, "/Accounts/AC1/Messages.json", got.path)
	assert.True(t, got.hasAuth)
	assert.Equal(t, "AC1", got.user)
	assert.Equal(t, "secret", got.pass)

	form, err := url.ParseQuery(string(got.body))
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+6285123968217", form.Get("From"))
	assert.Equal(t, "whatsapp:+6283117927964", form.Get("To"))
	assert.Equal(t, "halo", form.Get("Body"))
}

func TestFonnteProvider(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	p, err := NewProvider(config.NotificationConfig{
		Provider:     "fontte",
		SenderNumber: "6285123968217",
		Fonnte:       config.FonnteConfig{URL: srv.URL + "/send", APIKey1: "k1", APIKey2: "k2"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ProviderFonnte, p.Name())

	require.NoError(t, p.Send(context.Background(), "6283117927964", "halo"))
	assert.Equal(t, "k1", got.header.Get("X-API-Key-1"))
	assert.Equal(t, "k2", got.header.Get("X-API-Key-2"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "6283117927964", body["to"])
	assert.Equal(t, "k1", body["token1"])
	assert.Equal(t, "k2", body["token2"])
}

func TestGenericProvider_ErrorStatus(t *testing.T) {
	srv, got := captureServer(t, http.StatusBadGateway)
	p, err := NewProvider(config.NotificationConfig{
		Provider: ProviderGeneric,
		Generic:  config.GenericProviderConfig{URL: srv.URL, APIKey: "key"},
	}, zap.NewNop())
	require.NoError(t, err)

	err = p.Send(context.Background(), "6283117927964", "halo")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrProvider)

	var pe *apperr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	assert.Equal(t, "Bearer key", got.header.Get("Authorization"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "+6283117927964", body["to"])
}

type fakeProvider struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Send(_ context.Context, to, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, to)
	return nil
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []model.NotificationAttempt
}

func (m *memAttempts) Insert(_ context.Context, a *model.NotificationAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

type memOutbox struct {
	keys         []string
	aggregateIDs []*string
	payloads     []interface{}
}

func (o *memOutbox) Enqueue(_ context.Context, _ string, aggregateID *string, routingKey string, payload interface{}) (int64, error) {
	o.keys = append(o.keys, routingKey)
	o.aggregateIDs = append(o.aggregateIDs, aggregateID)
	o.payloads = append(o.payloads, payload)
	return int64(len(o.keys)), nil
}

func TestNotifier_DirectDeliveryRecordsAttempts(t *testing.T) {
	provider := &fakeProvider{}
	attempts := &memAttempts{}
	n := NewNotifier(provider, attempts, nil, Options{Mode: ModeQueue, BusinessNumber: "6283117927964"}, zap.NewNop())
	assert.Equal(t, ModeDirect, n.Mode())

	res := n.NotifyLeadFanout(context.Background(), sampleLead())
	assert.True(t, res.BusinessSent)
	assert.True(t, res.ClientSent)
	assert.Equal(t, []string{"6283117927964", "081234567890"}, provider.sent)

	require.Len(t, attempts.attempts, 2)
	assert.Equal(t, model.AudienceBusiness, attempts.attempts[0].Audience)
	assert.Equal(t, model.AttemptSent, attempts.attempts[1].Status)
	assert.Equal(t, "6281234567890", attempts.attempts[1].ToNumber)
}

func TestNotifier_ClientSkippedWithoutPhone(t *testing.T) {
	provider := &fakeProvider{}
	n := NewNotifier(provider, nil, nil, Options{BusinessNumber: "6283117927964"}, zap.NewNop())

	lead := sampleLead()
	lead.PhoneNumber = nil
	require.NoError(t, n.NotifyClient(context.Background(), lead))
	assert.Empty(t, provider.sent)

	res := n.NotifyLeadFanout(context.Background(), lead)
	assert.True(t, res.ClientSkipped)
	assert.Len(t, provider.sent, 1)
}

func TestNotifier_FailureIsReturnedAndAudited(t *testing.T) {
	provider := &fakeProvider{err: &apperr.ProviderError{Provider: "fake", StatusCode: 500}}
	attempts := &memAttempts{}
	n := NewNotifier(provider, attempts, nil, Options{BusinessNumber: "6283117927964"}, zap.NewNop())

	err := n.NotifyBusiness(context.Background(), sampleLead())
	assert.True(t, errors.Is(err, apperr.ErrProvider))
	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, model.AttemptFailed, attempts.attempts[0].Status)
	require.NotNil(t, attempts.attempts[0].Error)
}

func TestNotifier_QueueModeWritesOutbox(t *testing.T) {
	provider := &fakeProvider{}
	attempts := &memAttempts{}
	outbox := &memOutbox{}
	n := NewNotifier(provider, attempts, outbox, Options{Mode: ModeQueue, BusinessNumber: "6283117927964"}, zap.NewNop())

	project := model.Project{ID: "p1", ClientName: "Budi", ProjectName: "Website", ClientPhone: strPtr("0812")}
	require.NoError(t, n.NotifyStatusChange(context.Background(), project, model.StatusDiskusi, model.StatusDesain))

	assert.Empty(t, provider.sent)
	require.Len(t, outbox.keys, 1)
	assert.Equal(t, mqcontracts.RoutingKeyNotificationRequested, outbox.keys[0])
	msg := outbox.payloads[0].(mqcontracts.NotificationRequestedPayload)
	assert.Equal(t, "0812", msg.To)
	assert.Equal(t, "p1", *msg.ProjectID)

	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, model.AttemptQueued, attempts.attempts[0].Status)
}

func TestNotifier_UnsavedLeadHasNoLeadID(t *testing.T) {
	provider := &fakeProvider{}
	attempts := &memAttempts{}
	outbox := &memOutbox{}
	n := NewNotifier(provider, attempts, outbox, Options{Mode: ModeQueue, BusinessNumber: "6283117927964"}, zap.NewNop())

	lead := sampleLead()
	lead.ID = ""
	res := n.NotifyLeadFanout(context.Background(), lead)
	assert.Empty(t, res.BusinessError)
	assert.Empty(t, res.ClientError)

	require.Len(t, outbox.aggregateIDs, 2)
	for i, id := range outbox.aggregateIDs {
		assert.Nil(t, id)
		assert.Nil(t, outbox.payloads[i].(mqcontracts.NotificationRequestedPayload).LeadID)
	}
	require.Len(t, attempts.attempts, 2)
	for _, a := range attempts.attempts {
		assert.Nil(t, a.LeadID)
	}
}
