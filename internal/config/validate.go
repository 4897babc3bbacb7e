// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block
	// execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "dataset.dir",
// "metrics.pushgateway_url"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where needed.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config. It does not mutate the
// config; it returns a slice of Issue values and callers decide whether
// warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateDataset(c.Dataset)...)
	issues = append(issues, validateServer(c.Server)...)
	issues = append(issues, validateClassifier(c.Classifier)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateDataset(d Dataset) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.dir",
			Message:  "dataset.dir must not be empty",
		})
	}

	if d.Download {
		if strings.TrimSpace(d.URL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.url",
				Message:  "download is enabled but dataset.url is empty",
			})
		} else if u, err := url.Parse(d.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.url",
				Message:  fmt.Sprintf("dataset.url %q is not a valid http(s) URL", d.URL),
			})
		}
	}

	return issues
}

func validateServer(s Server) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Addr) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "server.addr",
			Message:  "server.addr must not be empty",
		})
	}

	return issues
}

func validateClassifier(c Classifier) []Issue {
	var issues []Issue

	if !c.Enabled {
		return issues
	}
	if c.APIKey == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "classifier.api_key",
			Message:  "classifier is enabled but MODEL_API_KEY is not set in the environment",
		})
	}
	if c.Endpoint != "" {
		if u, err := url.Parse(c.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "classifier.endpoint",
				Message:  fmt.Sprintf("classifier.endpoint %q is not a valid http(s) URL", c.Endpoint),
			})
		}
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"":         {},
		"nop":      {},
		"prompush": {},
	}
	if _, ok := known[m.Backend]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; ensure a matching implementation exists", m.Backend),
		})
	}

	if m.Backend == "prompush" && strings.TrimSpace(m.PushgatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.pushgateway_url",
			Message:  "prompush backend requires metrics.pushgateway_url",
		})
	}

	return issues
}
