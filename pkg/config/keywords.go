package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"credshield/internal/resilience/retry"
)

// LoadRetryKeywords loads a retry-eligibility keyword table from a YAML file.
//
// The file maps operation classes to the message substrings that make an
// otherwise-unclassified error retryable for that class:
//
//	provider_api:
//	  - overloaded
//	  - try again
//	datastore:
//	  - deadlock
//
// Classes absent from the file keep their built-in keyword lists, so a
// deployment can tune one class without restating the rest. Keywords are
// matched case-insensitively and are lowercased here; empty entries are
// rejected. Classes unknown to the retrier are accepted as-is: the table is
// configuration data and new classes are added by adding entries.
//
// The returned table is ready for retry.SetKeywordTable.
func LoadRetryKeywords(path string) (retry.KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read retry keywords: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse retry keywords: %w", err)
	}

	table := retry.DefaultKeywordTable()
	for class, keywords := range raw {
		if strings.TrimSpace(class) == "" {
			return nil, fmt.Errorf("retry keywords: empty class name")
		}
		cleaned := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("retry keywords: empty keyword for class %q", class)
			}
			cleaned = append(cleaned, kw)
		}
		table[retry.Class(class)] = cleaned
	}
	return table, nil
}
