package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation
// results. It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	c.Database.validate(result)
	c.Server.validate(result)
	c.Auth.validate(result)
	c.Logging.validate(result)
	return result
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	if d.ConnectionString != "" {
		return
	}
	if d.Host == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.host",
			Message: "database host is required when no DSN is configured",
			Hint:    "set database.dsn or database.host",
		})
	}
	if d.Port <= 0 || d.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("invalid port %d", d.Port),
		})
	}
	if d.Database == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required when no DSN is configured",
		})
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port <= 0 || s.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("invalid port %d", s.Port),
		})
	}
	if s.CORSEnabled && len(s.CORSAllowedOrigins) == 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "server.cors_allowed_origins",
			Message: "CORS is enabled but no origins are allowed",
			Hint:    "set server.cors_allowed_origins",
		})
	}
}

func (a *AuthConfig) validate(result *ValidationResult) {
	if a.JWTSecret == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "auth.jwt_secret",
			Message: "JWT secret is required",
			Hint:    "set STGQL_AUTH_JWT_SECRET or auth.jwt_secret_file",
		})
		return
	}
	if len(a.JWTSecret) < 32 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "auth.jwt_secret",
			Message: "JWT secret is shorter than 32 bytes",
			Hint:    "use a longer random secret",
		})
	}
}

func (l *LoggingConfig) validate(result *ValidationResult) {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown log level %q", l.Level),
			Hint:    "use debug, info, warn, or error",
		})
	}
	switch l.Format {
	case "", "json", "text":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown log format %q", l.Format),
			Hint:    "use json or text",
		})
	}
}
