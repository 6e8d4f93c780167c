// Package neoerrors defines the failure taxonomy and the Result type used by
// every fallible operation in neo.
//
// Expected failures travel as Result values; AppError carries the stable
// code, severity, category, and remediation suggestions that the error
// handler turns into user-facing output or automated recovery.
package neoerrors

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Severity ranks how bad a failure is for the user.
type Severity string

// Severity levels, lowest to highest.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category groups failures by their origin. RetryStrategy keys off the
// category to decide whether a failure is transient by nature.
type Category string

// Failure categories.
const (
	CategoryCommand        Category = "COMMAND"
	CategoryValidation     Category = "VALIDATION"
	CategoryConfiguration  Category = "CONFIGURATION"
	CategoryFileSystem     Category = "FILESYSTEM"
	CategoryNetwork        Category = "NETWORK"
	CategoryPlugin         Category = "PLUGIN"
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryPermission     Category = "PERMISSION"
	CategoryUnknown        Category = "UNKNOWN"
)

// AppError is the common base of the error taxonomy. Construct one with the
// New*Error functions; instances are treated as immutable once built.
type AppError struct {
	Code        string
	Message     string
	Severity    Severity
	Category    Category
	Timestamp   time.Time
	Context     map[string]any
	Suggestions []string
	Err         error // wrapped original error, may be nil

	stack string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the wrapped original error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message with suggestions appended, the form shown
// to users on the failure path.
func (e *AppError) UserMessage() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n\nSuggestions:")
	for _, s := range e.Suggestions {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}

// Report returns the detailed multi-line report used by the error handler.
func (e *AppError) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", e.Code, e.Category)
	fmt.Fprintf(&b, "  message:   %s\n", e.Message)
	fmt.Fprintf(&b, "  severity:  %s\n", e.Severity)
	fmt.Fprintf(&b, "  timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	if len(e.Context) > 0 {
		fmt.Fprintf(&b, "  context:   %v\n", e.Context)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(&b, "  suggestion: %s\n", s)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, "  cause:     %v\n", e.Err)
	}
	if e.stack != "" {
		fmt.Fprintf(&b, "  stack:\n%s", e.stack)
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler so reports can be emitted as JSON.
func (e *AppError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(struct {
		Code        string         `json:"code"`
		Message     string         `json:"message"`
		Severity    Severity       `json:"severity"`
		Category    Category       `json:"category"`
		Timestamp   time.Time      `json:"timestamp"`
		Context     map[string]any `json:"context,omitempty"`
		Suggestions []string       `json:"suggestions,omitempty"`
		Cause       string         `json:"cause,omitempty"`
	}{e.Code, e.Message, e.Severity, e.Category, e.Timestamp, e.Context, e.Suggestions, cause})
}

func newAppError(code, message string, severity Severity, category Category) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
		stack:     string(debug.Stack()),
	}
}

// WithContext returns a copy of the error with the key/value added to its
// context map.
func (e *AppError) WithContext(key string, value any) *AppError {
	clone := *e
	clone.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value
	return &clone
}

// WithSuggestions returns a copy of the error with the suggestions appended.
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	clone := *e
	clone.Suggestions = append(append([]string{}, e.Suggestions...), suggestions...)
	return &clone
}

// WithCause returns a copy of the error wrapping the original failure.
func (e *AppError) WithCause(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// NewCommandError reports a command-level failure.
func NewCommandError(command, message string, suggestions ...string) *AppError {
	e := newAppError("COMMAND_ERROR", message, SeverityMedium, CategoryCommand)
	e.Context = map[string]any{"command": command}
	e.Suggestions = suggestions
	return e
}

// NewValidationError reports bad input for a field.
func NewValidationError(field string, value any, message string) *AppError {
	e := newAppError("VALIDATION_ERROR", message, SeverityLow, CategoryValidation)
	e.Context = map[string]any{"field": field, "value": value}
	return e
}

// NewConfigurationError reports bad persisted configuration.
func NewConfigurationError(key, message string) *AppError {
	e := newAppError("CONFIGURATION_ERROR", message, SeverityHigh, CategoryConfiguration)
	e.Context = map[string]any{"key": key}
	e.Suggestions = []string{
		fmt.Sprintf("Check the value of %q in your configuration file", key),
		"Run 'neo config list' to inspect the current configuration",
	}
	return e
}

// FileOp names the filesystem operation that failed.
type FileOp string

// Filesystem operations.
const (
	FileOpRead   FileOp = "read"
	FileOpWrite  FileOp = "write"
	FileOpDelete FileOp = "delete"
	FileOpCreate FileOp = "create"
	FileOpAccess FileOp = "access"
)

// NewFileSystemError reports a failed filesystem operation on a path.
func NewFileSystemError(path string, op FileOp, message string) *AppError {
	e := newAppError("FILESYSTEM_ERROR", message, SeverityMedium, CategoryFileSystem)
	e.Context = map[string]any{"path": path, "operation": string(op)}
	return e
}

// NewNetworkError reports a failed network operation. statusCode is 0 when
// no response was received.
func NewNetworkError(url string, statusCode int, message string) *AppError {
	e := newAppError("NETWORK_ERROR", message, SeverityMedium, CategoryNetwork)
	e.Context = map[string]any{"url": url}
	if statusCode != 0 {
		e.Context["statusCode"] = statusCode
	}
	e.Suggestions = []string{"Check your network connection and try again"}
	return e
}

// NewPluginError reports a failure attributed to a named plugin.
func NewPluginError(plugin, message string, suggestions ...string) *AppError {
	e := newAppError("PLUGIN_ERROR", message, SeverityMedium, CategoryPlugin)
	e.Context = map[string]any{"plugin": plugin}
	e.Suggestions = suggestions
	return e
}

// NewAuthenticationError reports a failed or missing authentication. An
// empty message selects the default.
func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = "authentication failed"
	}
	e := newAppError("AUTHENTICATION_ERROR", message, SeverityHigh, CategoryAuthentication)
	e.Suggestions = []string{"Run 'neo auth login' to authenticate"}
	return e
}

// NewPermissionError reports missing permission on a resource. required may
// be empty when the needed permission is unknown.
func NewPermissionError(resource, required string) *AppError {
	msg := fmt.Sprintf("permission denied for %s", resource)
	e := newAppError("PERMISSION_ERROR", msg, SeverityHigh, CategoryPermission)
	e.Context = map[string]any{"resource": resource}
	if required != "" {
		e.Context["required"] = required
	}
	return e
}

// Normalize converts any recovered value into an AppError. AppErrors pass
// through untouched; plain errors and strings are wrapped as UNKNOWN.
func Normalize(v any) *AppError {
	switch err := v.(type) {
	case *AppError:
		return err
	case error:
		e := newAppError("UNKNOWN_ERROR", err.Error(), SeverityMedium, CategoryUnknown)
		e.Err = err
		return e
	case string:
		return newAppError("UNKNOWN_ERROR", err, SeverityMedium, CategoryUnknown)
	default:
		return newAppError("UNKNOWN_ERROR", fmt.Sprintf("%v", v), SeverityMedium, CategoryUnknown)
	}
}
