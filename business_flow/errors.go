// Package businessflow contains the core business logic and use cases for re-enrollment campaigns
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign lifecycle errors
	ErrNoCampaign            = errors.New("no active campaign")
	ErrCampaignAlreadyActive = errors.New("a campaign is already active")
	ErrRoleGone              = errors.New("campaign role no longer exists")

	// Confirmation errors
	ErrAlreadyResubscribed = errors.New("member already confirmed")
	ErrAlreadyMigrated     = errors.New("member already holds the new role")
	ErrNotConcerned        = errors.New("member does not hold the old role")
	ErrMemberNotRecognized = errors.New("member not recognized on the server")
	ErrRoleGrantFailed     = errors.New("failed to grant the new role")

	// Relance errors
	ErrAllResubscribed = errors.New("every member has already confirmed")

	// Permission errors
	ErrInsufficientPermissions = errors.New("insufficient bot permissions")
)

// CooldownError reports how long until the next reminder is allowed.
type CooldownError struct {
	RemainingMinutes int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("relance on cooldown for %d more minute(s)", e.RemainingMinutes)
}

func IsCooldown(err error) bool {
	var ce *CooldownError
	return errors.As(err, &ce)
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsNoCampaign(err error) bool {
	return errors.Is(err, ErrNoCampaign)
}

func IsCampaignAlreadyActive(err error) bool {
	return errors.Is(err, ErrCampaignAlreadyActive)
}

func IsRoleGone(err error) bool {
	return errors.Is(err, ErrRoleGone)
}

func IsAlreadyResubscribed(err error) bool {
	return errors.Is(err, ErrAlreadyResubscribed)
}

func IsAlreadyMigrated(err error) bool {
	return errors.Is(err, ErrAlreadyMigrated)
}

func IsNotConcerned(err error) bool {
	return errors.Is(err, ErrNotConcerned)
}

func IsMemberNotRecognized(err error) bool {
	return errors.Is(err, ErrMemberNotRecognized)
}

func IsRoleGrantFailed(err error) bool {
	return errors.Is(err, ErrRoleGrantFailed)
}

func IsAllResubscribed(err error) bool {
	return errors.Is(err, ErrAllResubscribed)
}

func IsInsufficientPermissions(err error) bool {
	return errors.Is(err, ErrInsufficientPermissions)
}
