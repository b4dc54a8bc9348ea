package llm

import (
	"errors"
	"strings"
)

// ErrFatalAPI marks API errors that retrying cannot fix: exhausted quota,
// billing problems, or bad credentials. Callers check with errors.Is.
var ErrFatalAPI = errors.New("fatal API error")

var fatalPatterns = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether an error indicates an account-level
// problem rather than a transient failure.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range fatalPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// wrapFatalError tags fatal API errors with ErrFatalAPI; other errors pass
// through unchanged.
func wrapFatalError(err error) error {
	if isFatalAPIError(err) {
		return errors.Join(ErrFatalAPI, err)
	}
	return err
}
