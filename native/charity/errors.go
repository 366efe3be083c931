package charity

import "errors"

var (
	// ErrNilState marks an engine invoked before a state backend was wired.
	ErrNilState = errors.New("charity: state not configured")
	// ErrCauseNotFound marks lookups for causes that were never registered.
	ErrCauseNotFound = errors.New("charity: cause not found")
	// ErrDuplicateName rejects cause names that are already registered.
	ErrDuplicateName = errors.New("charity: cause name already registered")
	// ErrInvalidAmount rejects zero or negative amounts and targets.
	ErrInvalidAmount = errors.New("charity: amount must be positive")
	// ErrInvalidBeneficiary rejects the zero address as a payout target.
	ErrInvalidBeneficiary = errors.New("charity: beneficiary required")
	// ErrInvalidName rejects empty cause names and milestone descriptions.
	ErrInvalidName = errors.New("charity: name required")
	// ErrUnauthorized marks callers lacking the admin role or beneficiary
	// capability required by the operation.
	ErrUnauthorized = errors.New("charity: unauthorized")
	// ErrCauseInactive rejects donations to deactivated causes.
	ErrCauseInactive = errors.New("charity: cause inactive")
	// ErrTargetReached rejects donations to causes whose funding target was
	// already met. The flag is permanent, so this also fires after the
	// beneficiary withdraws.
	ErrTargetReached = errors.New("charity: cause target already reached")
	// ErrNothingToWithdraw rejects withdrawals from causes with a zero
	// balance, including re-entrant calls racing an in-flight withdrawal.
	ErrNothingToWithdraw = errors.New("charity: nothing to withdraw")
	// ErrTransferFailed wraps payout collaborator failures. The cause
	// balance is restored before this surfaces.
	ErrTransferFailed = errors.New("charity: payout transfer failed")
	// ErrPayoutNotConfigured marks withdrawal attempts before a payout
	// collaborator was wired.
	ErrPayoutNotConfigured = errors.New("charity: payout transferrer not configured")
	// ErrIDCollision marks the (practically unreachable) case of a derived
	// cause identifier colliding with an existing one.
	ErrIDCollision = errors.New("charity: cause id collision")
)
