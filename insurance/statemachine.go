package insurance

import (
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/models"
)

// transitions is the full claim lifecycle. Rejected models a payer refusing
// the claim at intake; AppealDenied is terminal (no second appeal).
var transitions = map[string][]string{
	models.ClaimDraft:             {models.ClaimSubmitted, models.ClaimCancelled},
	models.ClaimSubmitted:         {models.ClaimUnderReview, models.ClaimRejected},
	models.ClaimUnderReview:       {models.ClaimApproved, models.ClaimPartiallyApproved, models.ClaimDenied},
	models.ClaimApproved:          {models.ClaimPaid},
	models.ClaimPartiallyApproved: {models.ClaimPaid},
	models.ClaimDenied:            {models.ClaimAppealSubmitted, models.ClaimClosed},
	models.ClaimAppealSubmitted:   {models.ClaimAppealApproved, models.ClaimAppealDenied},
	models.ClaimAppealApproved:    {models.ClaimPaid, models.ClaimClosed},
}

var terminal = map[string]bool{
	models.ClaimPaid:         true,
	models.ClaimRejected:     true,
	models.ClaimClosed:       true,
	models.ClaimCancelled:    true,
	models.ClaimAppealDenied: true,
}

// IsTerminal reports whether status admits no further transitions.
func IsTerminal(status string) bool { return terminal[status] }

// CanTransition reports whether from -> to is an allowed lifecycle step.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Editable reports whether the claim's codes, amounts and notes may still
// change. Paid and Closed claims are frozen.
func Editable(status string) bool {
	return status != models.ClaimPaid && status != models.ClaimClosed
}

// UpdateStatus applies one transition in memory: it appends the audit row
// first, then flips the status and actor. A disallowed transition returns a
// state conflict and leaves the claim untouched. History length only grows;
// the claim's status always equals the NewStatus of its last row.
func UpdateStatus(claim *models.InsuranceClaim, newStatus, reason, actorID, notes string, now time.Time) error {
	if !CanTransition(claim.Status, newStatus) {
		return apperr.StateConflict("claim %s cannot move from %s to %s",
			claim.ClaimNumber, claim.Status, newStatus)
	}

	claim.History = append(claim.History, models.ClaimStatusChange{
		ClaimID:        claim.ID,
		PreviousStatus: claim.Status,
		NewStatus:      newStatus,
		Reason:         reason,
		UpdatedBy:      actorID,
		Notes:          notes,
		CreatedAt:      now,
	})
	claim.Status = newStatus
	claim.LastUpdatedBy = actorID
	if newStatus == models.ClaimSubmitted && claim.SubmittedAt == nil {
		ts := now
		claim.SubmittedAt = &ts
	}
	return nil
}
