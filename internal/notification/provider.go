package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/pkg/circuitbreaker"
	"agencyhub/pkg/config"
	"agencyhub/pkg/metrics"
)

const (
	ProviderLog              = "log"
	ProviderWhatsAppBusiness = "whatsapp-business"
	ProviderTwilio           = "twilio"
	ProviderFonnte           = "fonnte"
	ProviderGeneric          = "generic"
)

// Provider delivers one text message to one WhatsApp number.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, text string) error
}

// NewProvider builds the adapter named by cfg.Provider. Missing credentials
// fail with ErrProviderNotConfigured.
func NewProvider(cfg config.NotificationConfig, logger *zap.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "fontte" {
		name = ProviderFonnte
	}

	switch name {
	case "", ProviderLog:
		return NewLogProvider(logger), nil
	case ProviderWhatsAppBusiness:
		c := cfg.WhatsAppBusiness
		if c.AccessToken == "" || c.PhoneNumberID == "" {
			return nil, fmt.Errorf("%w: %s needs access_token and phone_number_id", apperr.ErrProviderNotConfigured, name)
		}
		return &whatsAppBusinessProvider{cfg: c, sender: newHTTPSender(name, cfg.Timeout(), logger)}, nil
	case ProviderTwilio:
		c := cfg.Twilio
		if c.AccountSID == "" || c.AuthToken == "" {
			return nil, fmt.Errorf("%w: %s needs account_sid and auth_token", apperr.ErrProviderNotConfigured, name)
		}
		if c.FromNumber == "" {
			c.FromNumber = cfg.SenderNumber
		}
		return &twilioProvider{cfg: c, sender: newHTTPSender(name, cfg.Timeout(), logger)}, nil
	case ProviderFonnte:
		c := cfg.Fonnte
		if c.APIKey1 == "" || c.APIKey2 == "" || c.URL == "" {
			return nil, fmt.Errorf("%w: %s needs url, api_key_1 and api_key_2", apperr.ErrProviderNotConfigured, name)
		}
		return &fonnteProvider{cfg: c, from: cfg.SenderNumber, sender: newHTTPSender(name, cfg.Timeout(), logger)}, nil
	case ProviderGeneric:
		c := cfg.Generic
		if c.URL == "" {
			return nil, fmt.Errorf("%w: %s needs url", apperr.ErrProviderNotConfigured, name)
		}
		return &genericProvider{cfg: c, from: cfg.SenderNumber, sender: newHTTPSender(name, cfg.Timeout(), logger)}, nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", apperr.ErrProviderNotConfigured, cfg.Provider)
}

// httpSender is the shared transport of the HTTP adapters: bounded timeout,
// circuit breaker, metrics.
type httpSender struct {
	name    string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func newHTTPSender(name string, timeout time.Duration, logger *zap.Logger) *httpSender {
	return &httpSender{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

func (s *httpSender) do(req *http.Request) error {
	start := time.Now()
	err := s.breaker.Execute(func() error {
		resp, err := s.client.Do(req)
		if err != nil {
			return &apperr.ProviderError{Provider: s.name, Err: err}
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			s.logger.Warn("Provider rejected message",
				zap.String("provider", s.name),
				zap.Int("status_code", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return &apperr.ProviderError{Provider: s.name, StatusCode: resp.StatusCode}
		}
		return nil
	})

	status := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
		status = "circuit_open"
		err = &apperr.ProviderError{Provider: s.name, Err: err}
	case err != nil:
		status = "error"
	}
	metrics.RecordProviderCall(s.name, status, time.Since(start))
	return err
}

// NormalizeNumber strips formatting and rewrites a local 0-prefixed number
// to the 62 country code. The result has no leading plus.
func NormalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if strings.HasPrefix(n, "0") {
		n = "62" + strings.TrimPrefix(n, "0")
	}
	return n
}
