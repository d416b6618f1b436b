package model

import (
	"strings"
	"time"

	"agencyhub/internal/apperr"
)

type ProjectMilestone struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status"`
	DueDate     *time.Time    `json:"due_date"`
	CompletedAt *time.Time    `json:"completed_at"`
	OrderIndex  int           `json:"order_index"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type MilestoneInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
	OrderIndex  *int   `json:"order_index"`
}

type MilestonePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	OrderIndex  *int    `json:"order_index"`
}

// ToMilestone validates in for projectID. A missing order index is left at
// -1 so the repository can append.
func (in MilestoneInput) ToMilestone(projectID string) (*ProjectMilestone, error) {
	m := &ProjectMilestone{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(in.Title),
		Description: NilIfEmpty(strings.TrimSpace(in.Description)),
		Status:      StatusDiskusi,
		OrderIndex:  -1,
	}
	if m.Title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if in.Status != "" {
		st, err := ParseProjectStatus(in.Status)
		if err != nil {
			return nil, err
		}
		m.Status = st
	}
	due, err := ParseDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	m.DueDate = due
	if in.OrderIndex != nil {
		if *in.OrderIndex < 0 {
			return nil, apperr.Validation("order_index", "must not be negative")
		}
		m.OrderIndex = *in.OrderIndex
	}
	return m, nil
}

// Apply copies patch onto m and keeps CompletedAt in step with the status.
func (m *ProjectMilestone) Apply(patch MilestonePatch, now time.Time) error {
	if patch.Title != nil {
		v := strings.TrimSpace(*patch.Title)
		if v == "" {
			return apperr.Validation("title", "must not be empty")
		}
		m.Title = v
	}
	if patch.Description != nil {
		m.Description = NilIfEmpty(strings.TrimSpace(*patch.Description))
	}
	if patch.DueDate != nil {
		due, err := ParseDate("due_date", *patch.DueDate)
		if err != nil {
			return err
		}
		m.DueDate = due
	}
	if patch.OrderIndex != nil {
		if *patch.OrderIndex < 0 {
			return apperr.Validation("order_index", "must not be negative")
		}
		m.OrderIndex = *patch.OrderIndex
	}
	if patch.Status != nil {
		st, err := ParseProjectStatus(*patch.Status)
		if err != nil {
			return err
		}
		m.Status = st
	}
	m.SyncCompletion(now)
	return nil
}

// SyncCompletion stamps CompletedAt on entering Selesai and clears it on leaving.
func (m *ProjectMilestone) SyncCompletion(now time.Time) {
	if m.Status == StatusSelesai {
		if m.CompletedAt == nil {
			m.CompletedAt = &now
		}
		return
	}
	m.CompletedAt = nil
}
