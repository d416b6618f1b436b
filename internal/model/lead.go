package model

import (
	"strings"
	"time"

	"agencyhub/internal/apperr"
)

type ServiceType string

const (
	ServiceWebsite  ServiceType = "website"
	ServiceAplikasi ServiceType = "aplikasi"
	ServiceUIUX     ServiceType = "uiux"
)

// ParseServiceType accepts the canonical values and the English aliases
// used by older form versions.
func ParseServiceType(raw string) (ServiceType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "website", "web":
		return ServiceWebsite, nil
	case "aplikasi", "application", "app":
		return ServiceAplikasi, nil
	case "uiux", "ui_ux", "ui-ux", "ui/ux":
		return ServiceUIUX, nil
	}
	return "", apperr.Validation("service_type", "must be one of website, aplikasi, uiux")
}

// Label is the human-facing name used in project titles and messages.
func (s ServiceType) Label() string {
	switch s {
	case ServiceWebsite:
		return "Website"
	case ServiceAplikasi:
		return "Aplikasi"
	case ServiceUIUX:
		return "UI/UX"
	}
	return string(s)
}

type Lead struct {
	ID                 string      `json:"id"`
	ShortID            string      `json:"short_id"`
	Name               string      `json:"name"`
	Address            string      `json:"address"`
	ServiceType        ServiceType `json:"service_type"`
	PhoneNumber        *string     `json:"phone_number"`
	ProjectDescription *string     `json:"project_description"`
	Features           *string     `json:"features"`
	Budget             *string     `json:"budget"`
	AIAnalysis         *string     `json:"ai_analysis"`
	SubmittedAt        time.Time   `json:"submitted_at"`
	Processed          bool        `json:"processed"`
	ConvertedProjectID *string     `json:"converted_project_id,omitempty"`
}

// LeadInput is the public form payload.
type LeadInput struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	ServiceType        string `json:"service_type"`
	PhoneNumber        string `json:"phone_number"`
	ProjectDescription string `json:"project_description"`
	Features           string `json:"features"`
	Budget             string `json:"budget"`
}

// Normalize trims the input and checks the required fields.
func (in LeadInput) Normalize() (LeadInput, ServiceType, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.ProjectDescription = strings.TrimSpace(in.ProjectDescription)
	in.Features = strings.TrimSpace(in.Features)
	in.Budget = strings.TrimSpace(in.Budget)

	if in.Name == "" {
		return in, "", apperr.Validation("name", "is required")
	}
	if in.Address == "" {
		return in, "", apperr.Validation("address", "is required")
	}
	if strings.TrimSpace(in.ServiceType) == "" {
		return in, "", apperr.Validation("service_type", "is required")
	}
	st, err := ParseServiceType(in.ServiceType)
	if err != nil {
		return in, "", err
	}
	return in, st, nil
}

// LeadPatch lists the admin-editable lead fields. Nil means unchanged.
type LeadPatch struct {
	Processed          *bool   `json:"processed"`
	AIAnalysis         *string `json:"ai_analysis"`
	ConvertedProjectID *string `json:"-"`
}

func (p LeadPatch) Empty() bool {
	return p.Processed == nil && p.AIAnalysis == nil && p.ConvertedProjectID == nil
}

// Apply copies the set fields of p onto l.
func (l *Lead) Apply(p LeadPatch) {
	if p.Processed != nil {
		l.Processed = *p.Processed
	}
	if p.AIAnalysis != nil {
		l.AIAnalysis = p.AIAnalysis
	}
	if p.ConvertedProjectID != nil {
		l.ConvertedProjectID = p.ConvertedProjectID
	}
}

// NilIfEmpty maps "" to nil for optional columns.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
