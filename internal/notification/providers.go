package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/pkg/config"
)

const (
	defaultGraphURL  = "https://graph.facebook.com/v17.0"
	defaultTwilioURL = "https://api.twilio.com/2010-04-01"
)

func newJSONRequest(ctx context.Context, provider, endpoint string, payload interface{}) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &apperr.ProviderError{Provider: provider, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &apperr.ProviderError{Provider: provider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// whatsAppBusinessProvider talks to the Meta Graph messages endpoint.
type whatsAppBusinessProvider struct {
	cfg    config.WhatsAppBusinessConfig
	sender *httpSender
}

func (p *whatsAppBusinessProvider) Name() string { return ProviderWhatsAppBusiness }

func (p *whatsAppBusinessProvider) Send(ctx context.Context, to, text string) error {
	base := p.cfg.BaseURL
	if base == "" {
		base = defaultGraphURL
	}
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                NormalizeNumber(to),
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	req, err := newJSONRequest(ctx, p.Name(), fmt.Sprintf("%s/%s/messages", strings.TrimRight(base, "/"), p.cfg.PhoneNumberID), payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	return p.sender.do(req)
}

// twilioProvider posts form-encoded messages with basic auth.
type twilioProvider struct {
	cfg    config.TwilioConfig
	sender *httpSender
}

func (p *twilioProvider) Name() string { return ProviderTwilio }

func (p *twilioProvider) Send(ctx context.Context, to, text string) error {
	base := p.cfg.BaseURL
	if base == "" {
		base = defaultTwilioURL
	}
	from := p.cfg.FromNumber
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:+" + NormalizeNumber(from)
	}
	form := url.Values{}
	form.Set("From", from)
	form.Set("To", "whatsapp:+"+NormalizeNumber(to))
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(base, "/"), p.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &apperr.ProviderError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)
	return p.sender.do(req)
}

// fonnteProvider sends JSON authenticated by two API keys.
type fonnteProvider struct {
	cfg    config.FonnteConfig
	from   string
	sender *httpSender
}

func (p *fonnteProvider) Name() string { return ProviderFonnte }

func (p *fonnteProvider) Send(ctx context.Context, to, text string) error {
	payload := map[string]string{
		"to":      NormalizeNumber(to),
		"from":    NormalizeNumber(p.from),
		"message": text,
		"token1":  p.cfg.APIKey1,
		"token2":  p.cfg.APIKey2,
	}
	req, err := newJSONRequest(ctx, p.Name(), p.cfg.URL, payload)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key-1", p.cfg.APIKey1)
	req.Header.Set("X-API-Key-2", p.cfg.APIKey2)
	return p.sender.do(req)
}

// genericProvider posts {to, from, message} with a bearer key.
type genericProvider struct {
	cfg    config.GenericProviderConfig
	from   string
	sender *httpSender
}

func (p *genericProvider) Name() string { return ProviderGeneric }

func (p *genericProvider) Send(ctx context.Context, to, text string) error {
	payload := map[string]string{
		"to":      "+" + NormalizeNumber(to),
		"from":    "+" + NormalizeNumber(p.from),
		"message": text,
	}
	req, err := newJSONRequest(ctx, p.Name(), p.cfg.URL, payload)
	if err != nil {
		return err
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
	return p.sender.do(req)
}

// LogProvider only logs messages. Used for local runs.
type LogProvider struct {
	logger *zap.Logger
}

func NewLogProvider(logger *zap.Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

func (p *LogProvider) Name() string { return ProviderLog }

func (p *LogProvider) Send(_ context.Context, to, text string) error {
	p.logger.Info("WhatsApp message (log provider)",
		zap.String("to", NormalizeNumber(to)),
		zap.String("text", text),
	)
	return nil
}
