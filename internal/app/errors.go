package app

import "errors"

// Submission rejections. All are translated into structured responses at the
// HTTP boundary; none is allowed to crash the process.
var (
	// ErrNoContent rejects a submission whose content is empty after trimming.
	ErrNoContent = errors.New("No content is present")

	// ErrHelpTypeRequired rejects an anonymous submission without a help type.
	ErrHelpTypeRequired = errors.New("Help Type is not present")

	// ErrInvalidHelpType rejects a help type outside the enumeration.
	ErrInvalidHelpType = errors.New("invalid help type")

	// ErrAnonymousHelpType rejects anonymous use of account-only help types.
	ErrAnonymousHelpType = errors.New("Anonymous users can only use acute_validation or acute_skills. Sign in for advanced features")

	// ErrDuplicateEntry enforces the one-entry-per-day rule.
	ErrDuplicateEntry = errors.New("you have already written an entry today")

	// ErrEntryNotFound is returned when an entry does not exist or belongs to
	// another user.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken rejects signup with an existing email.
	ErrEmailTaken = errors.New("email already registered")
)
