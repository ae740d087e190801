package platform

import (
	"fmt"
	"regexp"
)

var SessionIdPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

func ValidateSessionId(id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}

	if !SessionIdPattern.MatchString(id) {
		return fmt.Errorf("invalid session id format: expected [A-Za-z0-9_-]{8,64}")
	}

	return nil
}

func ValidateNotEmpty(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
