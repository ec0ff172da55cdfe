package insurance

import (
	"testing"
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.ClaimDraft, models.ClaimSubmitted, true},
		{models.ClaimDraft, models.ClaimCancelled, true},
		{models.ClaimDraft, models.ClaimPaid, false},
		{models.ClaimSubmitted, models.ClaimRejected, true},
		{models.ClaimSubmitted, models.ClaimApproved, false},
		{models.ClaimUnderReview, models.ClaimPartiallyApproved, true},
		{models.ClaimApproved, models.ClaimPaid, true},
		{models.ClaimApproved, models.ClaimDenied, false},
		{models.ClaimDenied, models.ClaimAppealSubmitted, true},
		{models.ClaimAppealSubmitted, models.ClaimAppealDenied, true},
		{models.ClaimAppealApproved, models.ClaimPaid, true},
		{models.ClaimSubmitted, models.ClaimCancelled, false},
		{models.ClaimPaid, models.ClaimClosed, false},
		{models.ClaimRejected, models.ClaimSubmitted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalAndEditable(t *testing.T) {
	for _, s := range []string{
		models.ClaimPaid, models.ClaimRejected, models.ClaimClosed,
		models.ClaimCancelled, models.ClaimAppealDenied,
	} {
		assert.True(t, IsTerminal(s), s)
	}
	for _, s := range []string{models.ClaimDraft, models.ClaimSubmitted, models.ClaimDenied} {
		assert.False(t, IsTerminal(s), s)
	}

	assert.False(t, Editable(models.ClaimPaid))
	assert.False(t, Editable(models.ClaimClosed))
	assert.True(t, Editable(models.ClaimDenied), "denied claims stay editable for appeals")
	assert.True(t, Editable(models.ClaimDraft))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	claim := &models.InsuranceClaim{ClaimNumber: "CLM-2026-000007", Status: models.ClaimDraft}
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	steps := []struct {
		to, reason string
	}{
		{models.ClaimSubmitted, "submitted to payer"},
		{models.ClaimUnderReview, "payer acknowledged"},
		{models.ClaimDenied, "missing documentation"},
		{models.ClaimAppealSubmitted, "documentation attached"},
		{models.ClaimAppealApproved, "appeal accepted"},
	}
	for i, s := range steps {
		now := start.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, UpdateStatus(claim, s.to, s.reason, "reviewer-1", "", now))
	}

	assert.Equal(t, models.ClaimAppealApproved, claim.Status)
	require.Len(t, claim.History, 5)
	for i, row := range claim.History {
		assert.Equal(t, steps[i].to, row.NewStatus)
		if i > 0 {
			assert.Equal(t, steps[i-1].to, row.PreviousStatus)
			assert.False(t, row.CreatedAt.Before(claim.History[i-1].CreatedAt))
		} else {
			assert.Equal(t, models.ClaimDraft, row.PreviousStatus)
		}
	}

	require.NotNil(t, claim.SubmittedAt)
	assert.Equal(t, start, *claim.SubmittedAt)
}

func TestUpdateStatusRejectsIllegalStep(t *testing.T) {
	claim := &models.InsuranceClaim{ClaimNumber: "CLM-2026-000008", Status: models.ClaimDraft}
	now := time.Now()

	err := UpdateStatus(claim, models.ClaimPaid, "", "reviewer-1", "", now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
	assert.Equal(t, models.ClaimDraft, claim.Status)
	assert.Empty(t, claim.History, "failed transition appends no audit row")
}

func TestCancelOnlyFromDraft(t *testing.T) {
	now := time.Now()
	draft := &models.InsuranceClaim{Status: models.ClaimDraft}
	require.NoError(t, UpdateStatus(draft, models.ClaimCancelled, "entered in error", "doc-1", "", now))
	assert.Equal(t, models.ClaimCancelled, draft.Status)

	submitted := &models.InsuranceClaim{Status: models.ClaimSubmitted}
	err := UpdateStatus(submitted, models.ClaimCancelled, "", "doc-1", "", now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
}
