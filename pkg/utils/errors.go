// ===== pkg/utils/errors.go =====
package utils

import (
	"errors"
	"fmt"
	"log"
)

// CheckFatal logs a fatal error and exits if err is not nil
func CheckFatal(err error, context string) {
	if err != nil {
		log.Fatalf("%s: %v", context, err)
	}
}

// CheckWarn logs a warning and returns true if err is not nil
func CheckWarn(err error, context string) bool {
	if err != nil {
		log.Printf("Warning: %s: %v", context, err)
		return true
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// FirstKind returns the first of kinds that err wraps, or nil if none
// match. It lets callers report which class of failure occurred without
// a type switch over every sentinel.
func FirstKind(err error, kinds ...error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
