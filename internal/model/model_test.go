package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencyhub/internal/apperr"
)

func TestParseServiceType_Aliases(t *testing.T) {
	cases := map[string]ServiceType{
		"website":     ServiceWebsite,
		"Aplikasi":    ServiceAplikasi,
		"application": ServiceAplikasi,
		"app":         ServiceAplikasi,
		"ui_ux":       ServiceUIUX,
		"UI/UX":       ServiceUIUX,
		"uiux":        ServiceUIUX,
	}
	for raw, want := range cases {
		got, err := ParseServiceType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseServiceType("seo")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestServiceType_Label(t *testing.T) {
	assert.Equal(t, "Website", ServiceWebsite.Label())
	assert.Equal(t, "Aplikasi", ServiceAplikasi.Label())
	assert.Equal(t, "UI/UX", ServiceUIUX.Label())
}

func TestLeadInput_Normalize(t *testing.T) {
	in, st, err := LeadInput{Name: " Budi ", Address: "Jakarta", ServiceType: "website"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Budi", in.Name)
	assert.Equal(t, ServiceWebsite, st)

	_, _, err = LeadInput{Address: "Jakarta", ServiceType: "website"}.Normalize()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, _, err = LeadInput{Name: "Budi", ServiceType: "website"}.Normalize()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "address", ve.Field)

	_, _, err = LeadInput{Name: "Budi", Address: "Jakarta"}.Normalize()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "service_type", ve.Field)
}

func TestLead_Apply(t *testing.T) {
	lead := Lead{ID: "1"}
	processed := true
	analysis := "ok"
	lead.Apply(LeadPatch{Processed: &processed, AIAnalysis: &analysis})

	assert.True(t, lead.Processed)
	assert.Equal(t, "ok", Deref(lead.AIAnalysis))
	assert.Nil(t, lead.ConvertedProjectID)
	assert.True(t, LeadPatch{}.Empty())
}

func TestProjectInput_ToProject(t *testing.T) {
	p, err := ProjectInput{ClientName: "Budi", ProjectName: "Website", ShortID: "ab12cd", EstimatedCompletion: "2025-06-30"}.ToProject()
	require.NoError(t, err)
	assert.Equal(t, StatusDiskusi, p.Status)
	assert.Equal(t, "AB12CD", p.ShortID)
	require.NotNil(t, p.EstimatedCompletion)
	assert.Equal(t, time.June, p.EstimatedCompletion.Month())

	_, err = ProjectInput{ProjectName: "x"}.ToProject()
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ProjectInput{ClientName: "a", ProjectName: "b", EstimatedCompletion: "next week"}.ToProject()
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMilestone_CompletionTracksStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m, err := MilestoneInput{Title: "Wireframe"}.ToMilestone("p1")
	require.NoError(t, err)
	assert.Equal(t, -1, m.OrderIndex)

	done := "Selesai"
	require.NoError(t, m.Apply(MilestonePatch{Status: &done}, now))
	require.NotNil(t, m.CompletedAt)
	assert.Equal(t, now, *m.CompletedAt)

	back := "Development"
	require.NoError(t, m.Apply(MilestonePatch{Status: &back}, now.Add(time.Hour)))
	assert.Nil(t, m.CompletedAt)
}
