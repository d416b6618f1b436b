package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencyhub/internal/apperr"
)

func TestProgress_FixedMapping(t *testing.T) {
	expected := map[ProjectStatus]int{
		StatusDiskusi:     10,
		StatusDesain:      30,
		StatusDevelopment: 60,
		StatusTest:        90,
		StatusSelesai:     100,
	}
	for status, want := range expected {
		for i := 0; i < 3; i++ {
			assert.Equal(t, want, Progress(status), status)
		}
	}
	assert.Equal(t, 0, Progress("Unknown"))
}

func TestProgress_MonotonicAlongLifecycle(t *testing.T) {
	for i := 1; i < len(Statuses); i++ {
		assert.Greater(t, Statuses[i].Progress(), Statuses[i-1].Progress())
	}
}

func TestParseProjectStatus(t *testing.T) {
	cases := map[string]ProjectStatus{
		"Diskusi":     StatusDiskusi,
		"discussion":  StatusDiskusi,
		"DESIGN":      StatusDesain,
		"development": StatusDevelopment,
		"Testing":     StatusTest,
		" done ":      StatusSelesai,
		"Selesai":     StatusSelesai,
	}
	for raw, want := range cases {
		got, err := ParseProjectStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseProjectStatus("archived")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTimeline(t *testing.T) {
	steps := Timeline(StatusDevelopment)
	require.Len(t, steps, 5)
	assert.Equal(t, StepCompleted, steps[0].State)
	assert.Equal(t, StepCompleted, steps[1].State)
	assert.Equal(t, StepInProgress, steps[2].State)
	assert.Equal(t, StepPending, steps[3].State)
	assert.Equal(t, StepPending, steps[4].State)
	assert.Equal(t, 60, steps[2].Progress)

	done := Timeline(StatusSelesai)
	for _, s := range done {
		assert.Equal(t, StepCompleted, s.State)
	}

	for _, s := range Timeline("bogus") {
		assert.Equal(t, StepPending, s.State)
	}
}

func TestCheckTransition(t *testing.T) {
	t.Run("forward jump allowed", func(t *testing.T) {
		assert.NoError(t, CheckTransition(StatusDiskusi, StatusTest, false, true))
	})
	t.Run("same state allowed", func(t *testing.T) {
		assert.NoError(t, CheckTransition(StatusTest, StatusTest, false, true))
	})
	t.Run("backward rejected without reopen", func(t *testing.T) {
		err := CheckTransition(StatusTest, StatusDesain, false, true)
		assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	})
	t.Run("backward allowed with reopen", func(t *testing.T) {
		assert.NoError(t, CheckTransition(StatusSelesai, StatusDevelopment, true, true))
	})
	t.Run("unconstrained when forward only disabled", func(t *testing.T) {
		assert.NoError(t, CheckTransition(StatusSelesai, StatusDiskusi, false, false))
	})
	t.Run("unknown target", func(t *testing.T) {
		assert.ErrorIs(t, CheckTransition(StatusDiskusi, "Archived", true, true), apperr.ErrValidation)
	})
}
