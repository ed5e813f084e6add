/**
 * @description
 * Authorization policy for verification-record updates. The rules are
 * expressed as one pure function so they can be tested without HTTP or
 * storage in the way:
 *
 *   - Admins may write any field of any record: completed flags in either
 *     direction, amounts, and notes.
 *   - Clients may only write the completed flags of their OWN record, only
 *     from false to true, and only for the next eligible stage.
 */

package app

import (
	"github.com/euronova/banking-service/internal/domain"
)

// checkVerificationUpdate validates the requested update against the actor's
// permissions and the record's current state. It returns nil when every
// requested field is allowed.
func checkVerificationUpdate(actor domain.Actor, rec *domain.VerificationStep, req *domain.VerificationStepUpdateRequest) error {
	if actor.IsAdmin() {
		return nil
	}

	if rec.UserID != actor.UserID {
		return ErrUnauthorized
	}
	if req.TouchesAmountsOrNotes() {
		return ErrUnauthorized
	}

	// Evaluate stages in ascending order against an effective view so that a
	// single request may complete several consecutive stages.
	var effective [domain.NumVerificationStages + 1]bool
	for n := 1; n <= domain.NumVerificationStages; n++ {
		effective[n] = rec.StepCompleted(n)
	}
	for n := 1; n <= domain.NumVerificationStages; n++ {
		want := req.Completed(n)
		if want == nil {
			continue
		}
		if !*want {
			// Only admins may cancel a validated stage.
			if effective[n] {
				return ErrUnauthorized
			}
			continue
		}
		if effective[n] {
			continue // idempotent re-completion
		}
		if n > 1 && !effective[n-1] {
			return ErrOutOfOrder
		}
		effective[n] = true
	}
	return nil
}
