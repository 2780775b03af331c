// Package failure maps raw errors from provider calls, probes, and datastore
// operations into a closed taxonomy with a recoverable flag. The classifier
// produces a tagged result instead of a bare error so retry loops and
// recovery strategies can branch on the kind without re-matching strings at
// every call site. The recoverable flag is authoritative: non-recoverable
// kinds must never be retried regardless of the retry configuration.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Kind is the closed classification of a failure.
type Kind string

const (
	// KindRateLimitExceeded is HTTP 429 or equivalent provider throttling. Recoverable.
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	// KindTimeout is a deadline or network timeout. Recoverable.
	KindTimeout Kind = "timeout"
	// KindInsufficientQuota is HTTP 402 / exhausted billing quota. Not recoverable.
	KindInsufficientQuota Kind = "insufficient_quota"
	// KindInvalidCredential is HTTP 401 / rejected authentication. Not recoverable.
	KindInvalidCredential Kind = "invalid_credential"
	// KindNetworkError is DNS failure or connection-level refusal/reset. Recoverable.
	KindNetworkError Kind = "network_error"
	// KindDatabaseError is a datastore failure. Recoverable.
	KindDatabaseError Kind = "database_error"
	// KindUnknown is the default classification. Recoverable.
	KindUnknown Kind = "unknown"
)

// Recoverable reports whether errors of this kind are eligible for retry.
func (k Kind) Recoverable() bool {
	switch k {
	case KindInsufficientQuota, KindInvalidCredential:
		return false
	}
	return true
}

// Classified is a raw error tagged with its classification. It wraps the
// original cause and records the operation that produced it.
type Classified struct {
	Kind        Kind
	Op          string
	Recoverable bool
	Err         error
}

// Error implements the error interface.
func (c *Classified) Error() string {
	return fmt.Sprintf("%s: %s: %v", c.Op, c.Kind, c.Err)
}

// Unwrap returns the original cause.
func (c *Classified) Unwrap() error {
	return c.Err
}

// StatusError carries an HTTP status code from a provider response.
// Probes and clients return it so classification does not depend on
// vendor-specific error types.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// substrings that mark an error message as belonging to a kind. Status codes
// and typed errors win over these; within the table, earlier entries win, so
// rate-limit text beats the generic timeout words.
var messageKinds = []struct {
	kind    Kind
	matches []string
}{
	{KindRateLimitExceeded, []string{"rate limit", "too many requests"}},
	{KindInsufficientQuota, []string{"insufficient quota", "quota exceeded", "billing"}},
	{KindInvalidCredential, []string{"invalid api key", "invalid x-api-key", "unauthorized", "authentication"}},
	{KindTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{KindDatabaseError, []string{"database", "sql:", "pgx", "connection pool", "pq:"}},
	{KindNetworkError, []string{"no such host", "connection refused", "connection reset", "network is unreachable"}},
}

// Classify maps err into the closed taxonomy, tagging it with the operation
// name. An error that is already a *Classified passes through unchanged so
// call sites can classify defensively at each layer.
func Classify(err error, op string) *Classified {
	var already *Classified
	if errors.As(err, &already) {
		return already
	}

	kind := classifyKind(err)
	return &Classified{
		Kind:        kind,
		Op:          op,
		Recoverable: kind.Recoverable(),
		Err:         err,
	}
}

func classifyKind(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	// HTTP status codes are authoritative over everything else.
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimitExceeded
		case statusErr.StatusCode == http.StatusPaymentRequired:
			return KindInsufficientQuota
		case statusErr.StatusCode == http.StatusUnauthorized:
			return KindInvalidCredential
		case statusErr.StatusCode == http.StatusRequestTimeout:
			return KindTimeout
		}
		// Other statuses fall through to message matching below.
	}

	// Typed timeout and connection errors.
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetworkError
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return KindNetworkError
	}

	// Message substrings, in table order.
	msg := strings.ToLower(err.Error())
	for _, entry := range messageKinds {
		for _, match := range entry.matches {
			if strings.Contains(msg, match) {
				return entry.kind
			}
		}
	}

	return KindUnknown
}
