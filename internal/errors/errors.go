package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Command errors (CMD-001 to CMD-099)
	ErrCodeCommandFailed   ErrorCode = "CMD-001"
	ErrCodeCommandNotFound ErrorCode = "CMD-002"

	// Hosting API errors (API-001 to API-099)
	ErrCodePullRequestFailed ErrorCode = "API-001"
	ErrCodeAPIAuth           ErrorCode = "API-002"
	ErrCodeAPIRepository     ErrorCode = "API-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigMissing    ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG-002"
	ErrCodeConfigUnreadable ErrorCode = "CONFIG-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileWriteFailed ErrorCode = "IO-001"
	ErrCodeDirectoryFailed ErrorCode = "IO-002"
)

// Category groups error codes by the failure taxonomy of a staging run.
type Category string

const (
	CategoryCommand       Category = "command"
	CategoryAPI           Category = "api"
	CategoryConfiguration Category = "configuration"
	CategoryIO            Category = "io"
	CategoryUnknown       Category = "unknown"
)

// StepError is a coded error raised by the staging step
type StepError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *StepError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *StepError) Unwrap() error {
	return e.Cause
}

// Category returns the taxonomy bucket of the error code.
func (e *StepError) Category() Category {
	prefix, _, _ := strings.Cut(string(e.Code), "-")
	switch prefix {
	case "CMD":
		return CategoryCommand
	case "API":
		return CategoryAPI
	case "CONFIG":
		return CategoryConfiguration
	case "IO":
		return CategoryIO
	default:
		return CategoryUnknown
	}
}

// New creates a new StepError
func New(code ErrorCode, message string) *StepError {
	return &StepError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new StepError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *StepError {
	return &StepError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *StepError) WithSuggestions(suggestions ...string) *StepError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// As finds the first StepError in err's chain.
func As(err error) (*StepError, bool) {
	var stepErr *StepError
	if stderrors.As(err, &stepErr) {
		return stepErr, true
	}
	return nil, false
}

// CategoryOf returns the category of the first StepError in err's chain.
func CategoryOf(err error) Category {
	if stepErr, ok := As(err); ok {
		return stepErr.Category()
	}
	return CategoryUnknown
}

// IsCommandFailure reports whether err is an external process failure.
func IsCommandFailure(err error) bool {
	return CategoryOf(err) == CategoryCommand
}

// IsAPIFailure reports whether err is a hosting API failure.
func IsAPIFailure(err error) bool {
	return CategoryOf(err) == CategoryAPI
}

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool {
	return CategoryOf(err) == CategoryConfiguration
}

// Common error constructors for frequently used errors

// NewCommandFailure wraps a failed external process.
func NewCommandFailure(command string, cause error) *StepError {
	return Wrap(ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", command), cause).
		WithSuggestion("Re-run with debug_mode: true to stream the command output")
}

// NewCommandNotFound reports a missing executable.
func NewCommandNotFound(name string, cause error) *StepError {
	return Wrap(ErrCodeCommandNotFound, fmt.Sprintf("executable not found: %s", name), cause).
		WithSuggestion(fmt.Sprintf("Install %s and make sure it is on PATH", name)).
		WithSuggestion("Run 'clientstage doctor' to check the environment")
}

// NewPullRequestError reports a pull request that could not be created.
func NewPullRequestError(base, head string, cause error) *StepError {
	return Wrap(ErrCodePullRequestFailed, fmt.Sprintf("pull request creation failed (base: %s, head: %s)", base, head), cause).
		WithSuggestion("Check that the branch was pushed and differs from the base").
		WithSuggestion("Check whether a pull request for this branch is already open")
}

// NewAPIAuthError reports rejected hosting credentials.
func NewAPIAuthError(user string, cause error) *StepError {
	return Wrap(ErrCodeAPIAuth, fmt.Sprintf("authentication failed for user: %s", user), cause).
		WithSuggestion("Check staging.git_user_name and staging.git_security_token").
		WithSuggestion("Set CLIENTSTAGE_GIT_SECURITY_TOKEN in the environment")
}

// NewAPIRepositoryError reports a repository that could not be opened.
func NewAPIRepositoryError(owner, name string, cause error) *StepError {
	return Wrap(ErrCodeAPIRepository, fmt.Sprintf("cannot open repository %s/%s", owner, name), cause).
		WithSuggestion("Check staging.git_repo and the token's repository access")
}

// NewConfigMissingError reports a required configuration field that is empty.
func NewConfigMissingError(field string) *StepError {
	return New(ErrCodeConfigMissing, fmt.Sprintf("missing required configuration field: %s", field)).
		WithSuggestion(fmt.Sprintf("Set %s in the step configuration file", field))
}

// NewConfigInvalidError reports a malformed configuration value.
func NewConfigInvalidError(field, value, reason string) *StepError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid value %q for %s: %s", value, field, reason))
}

// NewConfigUnreadableError reports a configuration file that cannot be loaded.
func NewConfigUnreadableError(path string, cause error) *StepError {
	return Wrap(ErrCodeConfigUnreadable, fmt.Sprintf("cannot read configuration: %s", path), cause).
		WithSuggestion("Check the --config path and the YAML syntax")
}

// NewFileWriteError creates a file write error
func NewFileWriteError(path string, cause error) *StepError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify the output directory exists and is writable")
}

// NewDirectoryError creates a directory creation error
func NewDirectoryError(path string, cause error) *StepError {
	return Wrap(ErrCodeDirectoryFailed, fmt.Sprintf("failed to create directory: %s", path), cause)
}
