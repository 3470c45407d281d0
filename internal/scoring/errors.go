package scoring

import (
	"fmt"

	"github.com/jonathan/geo-scorer/internal/types"
)

// UnknownTierError is returned when a request names a tier the engine does not know.
type UnknownTierError struct {
	Tier string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown tier %q: must be free, pro, or agency", e.Tier)
}

// UnknownPillarError is returned when a partial score names an unregistered pillar.
type UnknownPillarError struct {
	Key types.PillarKey
}

func (e *UnknownPillarError) Error() string {
	return fmt.Sprintf("unknown pillar %q", e.Key)
}

// RegistrationError reports an invalid Builder registration.
type RegistrationError struct {
	Message string
	Cause   error
}

func (e *RegistrationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("registration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("registration error: %s", e.Message)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}
