package orchestrators

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"edusahasra/internal/domain/school"
)

// VerifyAPI defines the backend calls needed by VerifySchool.
type VerifyAPI interface {
	GetSchoolForReview(ctx context.Context, id string) (school.School, error)
	VerifySchool(ctx context.Context, id, status, reason string) (school.School, string, error)
}

// VerifySchoolInput carries the admin's verification decision.
type VerifySchoolInput struct {
	SchoolID string
	Status   string // school.StatusApproved or school.StatusRejected
	Reason   string // required when rejecting
}

// VerifySchoolDeps holds dependencies for VerifySchool.
type VerifySchoolDeps struct {
	API VerifyAPI
	Log zerolog.Logger
}

var (
	ErrNotPending     = errors.New("this school is not awaiting verification")
	ErrReasonRequired = errors.New("a reason is required when rejecting a school")
	ErrBadDecision    = errors.New("decision must be approve or reject")
)

// ExecuteVerifySchool applies an admin's approve or reject decision to a
// pending school.
// PRE: the school's status is pending
// INVARIANT: a rejection always carries a non-blank reason
func ExecuteVerifySchool(ctx context.Context, input VerifySchoolInput, deps VerifySchoolDeps) (school.School, string, error) {
	if input.Status != school.StatusApproved && input.Status != school.StatusRejected {
		return school.School{}, "", ErrBadDecision
	}
	if input.Status == school.StatusRejected && strings.TrimSpace(input.Reason) == "" {
		return school.School{}, "", ErrReasonRequired
	}

	current, err := deps.API.GetSchoolForReview(ctx, input.SchoolID)
	if err != nil {
		return school.School{}, "", err
	}
	if !current.IsPending() {
		return school.School{}, "", ErrNotPending
	}

	updated, msg, err := deps.API.VerifySchool(ctx, input.SchoolID, input.Status, input.Reason)
	if err != nil {
		return school.School{}, "", err
	}

	deps.Log.Info().
		Str("school_id", input.SchoolID).
		Str("decision", input.Status).
		Msg("school_verified")
	return updated, msg, nil
}
