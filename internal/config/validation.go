package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError holds all validation failures for a config file.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

// Validate checks the config for correctness. Flags and environment are
// applied before this runs, so it also covers values that did not come from
// the file.
func (cfg *FileConfig) Validate() error {
	var errs []string

	if err := validateURL(cfg.Server.URL); err != nil {
		errs = append(errs, fmt.Sprintf("server.url: %v", err))
	}
	if cfg.Server.TimeoutSec < 0 {
		errs = append(errs, fmt.Sprintf("server.timeout_sec: must not be negative, got %d", cfg.Server.TimeoutSec))
	}
	if cfg.Server.BindPasswordFile != "" && cfg.Server.BindDN == "" {
		errs = append(errs, "server.bind_password_file: requires server.bind_dn")
	}
	if cfg.Server.StartTLS && strings.HasPrefix(strings.ToLower(cfg.Server.URL), "ldaps://") {
		errs = append(errs, "server.start_tls: cannot be combined with an ldaps:// url")
	}
	if cfg.Report.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("report.concurrency: must be at least 1, got %d", cfg.Report.Concurrency))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "ldap", "ldaps", "ldapi":
		return nil
	default:
		return fmt.Errorf("invalid scheme %q (must be ldap, ldaps, or ldapi)", u.Scheme)
	}
}
