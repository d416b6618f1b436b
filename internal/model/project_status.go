package model

import (
	"fmt"
	"strings"

	"agencyhub/internal/apperr"
)

// ProjectStatus is the ordered project lifecycle. Progress is derived from
// it and never stored.
type ProjectStatus string

const (
	StatusDiskusi     ProjectStatus = "Diskusi"
	StatusDesain      ProjectStatus = "Desain"
	StatusDevelopment ProjectStatus = "Development"
	StatusTest        ProjectStatus = "Test"
	StatusSelesai     ProjectStatus = "Selesai"
)

// Statuses lists every state in lifecycle order.
var Statuses = []ProjectStatus{
	StatusDiskusi,
	StatusDesain,
	StatusDevelopment,
	StatusTest,
	StatusSelesai,
}

var progressByStatus = map[ProjectStatus]int{
	StatusDiskusi:     10,
	StatusDesain:      30,
	StatusDevelopment: 60,
	StatusTest:        90,
	StatusSelesai:     100,
}

var statusAliases = map[string]ProjectStatus{
	"diskusi":     StatusDiskusi,
	"discussion":  StatusDiskusi,
	"desain":      StatusDesain,
	"design":      StatusDesain,
	"development": StatusDevelopment,
	"test":        StatusTest,
	"testing":     StatusTest,
	"selesai":     StatusSelesai,
	"done":        StatusSelesai,
	"completed":   StatusSelesai,
}

// ParseProjectStatus accepts wire values and English names, case-insensitively.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", apperr.Validation("status", fmt.Sprintf("unknown status %q", raw))
}

func (s ProjectStatus) Valid() bool {
	_, ok := progressByStatus[s]
	return ok
}

// Progress returns the completion percentage for s, 0 for unknown values.
func (s ProjectStatus) Progress() int {
	return progressByStatus[s]
}

// Index is the position of s in the lifecycle, -1 if unknown.
func (s ProjectStatus) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Progress is the package-level form of ProjectStatus.Progress.
func Progress(s ProjectStatus) int {
	return s.Progress()
}

const (
	StepCompleted  = "completed"
	StepInProgress = "in_progress"
	StepPending    = "pending"
)

type TimelineStep struct {
	Status   ProjectStatus `json:"status"`
	Progress int           `json:"progress"`
	State    string        `json:"state"`
}

// Timeline marks every lifecycle step relative to current. The final state
// counts as completed rather than in progress.
func Timeline(current ProjectStatus) []TimelineStep {
	idx := current.Index()
	steps := make([]TimelineStep, 0, len(Statuses))
	for i, st := range Statuses {
		state := StepPending
		switch {
		case idx < 0:
		case i < idx:
			state = StepCompleted
		case i == idx && st == StatusSelesai:
			state = StepCompleted
		case i == idx:
			state = StepInProgress
		}
		steps = append(steps, TimelineStep{Status: st, Progress: st.Progress(), State: state})
	}
	return steps
}

// CheckTransition validates from -> to. Moving backwards needs reopen when
// forwardOnly is set. Same-state moves are always allowed.
func CheckTransition(from, to ProjectStatus, reopen, forwardOnly bool) error {
	if !to.Valid() {
		return apperr.Validation("status", fmt.Sprintf("unknown status %q", to))
	}
	if from == to || !forwardOnly || !from.Valid() {
		return nil
	}
	if to.Index() < from.Index() && !reopen {
		return fmt.Errorf("%w: %s -> %s requires reopen", apperr.ErrInvalidTransition, from, to)
	}
	return nil
}
