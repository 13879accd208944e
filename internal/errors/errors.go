// Package errors defines the error taxonomy shared by the composition
// pipeline and the cluster lifecycle service.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfiguration indicates an invalid or conflicting configuration that
// requires user intervention. Composition aborts on it and nothing is
// applied; reconciliation should not requeue automatically.
var ErrConfiguration = errors.New("configuration error")

// ErrTransientKubernetesAPI indicates a temporary Kubernetes API condition
// that should be retried by the surrounding reconciliation loop.
var ErrTransientKubernetesAPI = errors.New("transient Kubernetes API error")

// WrapConfiguration wraps an error as a configuration error.
func WrapConfiguration(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// NewConfiguration returns a configuration error with the given message.
func NewConfiguration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// IsConfiguration checks whether err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// WrapTransientKubernetesAPI wraps an error as a transient Kubernetes API error.
func WrapTransientKubernetesAPI(err error) error {
	if err == nil {
		return nil
	}
	if IsTransientKubernetesAPI(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientKubernetesAPI, err)
}

// IsTransientKubernetesAPI checks if an error is a transient Kubernetes API error.
func IsTransientKubernetesAPI(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransientKubernetesAPI) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"rate limit",
		"too many requests",
		"service unavailable",
		"internal server error",
		"context deadline exceeded",
		"timeout",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// ShouldRequeue determines whether an error should trigger a requeue.
// Transient errors requeue with a short delay; configuration errors and
// deployment failures wait for a spec change. Unknown errors fall back to
// controller-runtime backoff.
func ShouldRequeue(err error) (bool, time.Duration) {
	if err == nil {
		return false, 0
	}
	if IsTransientKubernetesAPI(err) {
		return true, 5 * time.Second
	}
	if IsConfiguration(err) || IsDeploymentFailed(err) {
		return false, 0
	}
	return true, 0
}
