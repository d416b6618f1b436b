package model

import (
	"strings"
	"time"

	"agencyhub/internal/apperr"
)

const DateLayout = "2006-01-02"

type Project struct {
	ID                  string        `json:"id"`
	ShortID             string        `json:"short_id"`
	ClientName          string        `json:"client_name"`
	ProjectName         string        `json:"project_name"`
	Description         *string       `json:"description"`
	Status              ProjectStatus `json:"status"`
	EstimatedCompletion *time.Time    `json:"estimated_completion"`
	ClientPhone         *string       `json:"client_phone,omitempty"`
	LeadID              *string       `json:"lead_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (p Project) Progress() int {
	return p.Status.Progress()
}

// ProjectInput is the admin create payload.
type ProjectInput struct {
	ClientName          string `json:"client_name"`
	ProjectName         string `json:"project_name"`
	Description         string `json:"description"`
	Status              string `json:"status"`
	EstimatedCompletion string `json:"estimated_completion"`
	ShortID             string `json:"short_id"`
	ClientPhone         string `json:"client_phone"`
}

// ToProject validates in and builds an unsaved project. Status defaults to
// Diskusi.
func (in ProjectInput) ToProject() (*Project, error) {
	p := &Project{
		ClientName:  strings.TrimSpace(in.ClientName),
		ProjectName: strings.TrimSpace(in.ProjectName),
		Description: NilIfEmpty(strings.TrimSpace(in.Description)),
		ShortID:     strings.ToUpper(strings.TrimSpace(in.ShortID)),
		ClientPhone: NilIfEmpty(strings.TrimSpace(in.ClientPhone)),
		Status:      StatusDiskusi,
	}
	if p.ClientName == "" {
		return nil, apperr.Validation("client_name", "is required")
	}
	if p.ProjectName == "" {
		return nil, apperr.Validation("project_name", "is required")
	}
	if in.Status != "" {
		st, err := ParseProjectStatus(in.Status)
		if err != nil {
			return nil, err
		}
		p.Status = st
	}
	due, err := ParseDate("estimated_completion", in.EstimatedCompletion)
	if err != nil {
		return nil, err
	}
	p.EstimatedCompletion = due
	return p, nil
}

// ProjectPatch lists editable project fields. Status changes go through the
// status machine.
type ProjectPatch struct {
	ClientName          *string `json:"client_name"`
	ProjectName         *string `json:"project_name"`
	Description         *string `json:"description"`
	Status              *string `json:"status"`
	EstimatedCompletion *string `json:"estimated_completion"`
	ClientPhone         *string `json:"client_phone"`
	Reopen              bool    `json:"reopen"`
}

// ApplyFields copies every non-status field of patch onto p.
func (p *Project) ApplyFields(patch ProjectPatch) error {
	if patch.ClientName != nil {
		v := strings.TrimSpace(*patch.ClientName)
		if v == "" {
			return apperr.Validation("client_name", "must not be empty")
		}
		p.ClientName = v
	}
	if patch.ProjectName != nil {
		v := strings.TrimSpace(*patch.ProjectName)
		if v == "" {
			return apperr.Validation("project_name", "must not be empty")
		}
		p.ProjectName = v
	}
	if patch.Description != nil {
		p.Description = NilIfEmpty(strings.TrimSpace(*patch.Description))
	}
	if patch.ClientPhone != nil {
		p.ClientPhone = NilIfEmpty(strings.TrimSpace(*patch.ClientPhone))
	}
	if patch.EstimatedCompletion != nil {
		due, err := ParseDate("estimated_completion", *patch.EstimatedCompletion)
		if err != nil {
			return err
		}
		p.EstimatedCompletion = due
	}
	return nil
}

// ParseDate parses YYYY-MM-DD or RFC3339. Empty input yields nil.
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation(field, "must be a date (YYYY-MM-DD)")
}
