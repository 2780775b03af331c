package retry

import (
	"strings"

	"credshield/internal/resilience/failure"
)

// Class names a family of operations that shares one retry-eligibility
// keyword list. Classes are configuration data: adding one means adding a
// table entry, not touching the retry loop.
type Class string

const (
	// ClassProviderAPI covers calls to third-party provider APIs.
	ClassProviderAPI Class = "provider_api"
	// ClassDatastore covers database reads and writes.
	ClassDatastore Class = "datastore"
	// ClassFileIO covers local file operations.
	ClassFileIO Class = "file_io"
)

// KeywordTable maps an operation class to the message substrings that make
// an otherwise-unclassified error retry-eligible for that class.
type KeywordTable map[Class][]string

// DefaultKeywordTable returns the built-in retry-eligibility keywords.
// Deployments can override it with pkg/config.LoadRetryKeywords.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		ClassProviderAPI: {"overloaded", "server error", "service unavailable", "try again"},
		ClassDatastore:   {"connection", "deadlock", "too many clients", "broken pipe"},
		ClassFileIO:      {"resource temporarily unavailable", "interrupted system call"},
	}
}

// defaultTable backs ConditionFor. Replaced as a whole by SetKeywordTable;
// individual entries are never mutated in place.
var defaultTable = DefaultKeywordTable()

// SetKeywordTable replaces the process-wide keyword table. Call during
// startup, before any retry loop runs.
func SetKeywordTable(table KeywordTable) {
	if table != nil {
		defaultTable = table
	}
}

// ConditionFor builds the retry predicate for an operation class.
// The classifier's recoverable flag is authoritative: non-recoverable kinds
// (invalid credential, exhausted quota) are never retried. Recoverable
// classified kinds are always retried; errors the classifier cannot place
// (KindUnknown) are retried only when their message matches one of the
// class's keywords.
func ConditionFor(class Class) Condition {
	return func(err error) bool {
		if err == nil {
			return false
		}

		classified := failure.Classify(err, string(class))
		if !classified.Recoverable {
			return false
		}
		if classified.Kind != failure.KindUnknown {
			return true
		}

		msg := strings.ToLower(err.Error())
		for _, keyword := range defaultTable[class] {
			if strings.Contains(msg, keyword) {
				return true
			}
		}
		return false
	}
}
