package subscription

import "errors"

// Sentinel errors for the subscription service layer. Repository
// implementations translate driver-level failures into these.
var (
	ErrInvalidEmail   = errors.New("invalid subscriber email")
	ErrInvalidName    = errors.New("invalid subscriber name")
	ErrDuplicateEmail = errors.New("email is already subscribed")
	ErrTokenCollision = errors.New("confirmation token already exists")
	ErrUnknownToken   = errors.New("unknown confirmation token")
)
