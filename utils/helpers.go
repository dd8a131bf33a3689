package utils

import (
	"github.com/google/uuid"
)

// GenerateCallID mints a call identifier for requests that arrive
// without a provider call id.
func GenerateCallID() string {
	return "call_" + uuid.NewString()
}
