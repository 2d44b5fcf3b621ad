// Package errors provides structured error handling for DocChunk
package errors

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/docchunk/docchunk/pkg/types"
)

// ErrorCode represents specific error codes
type ErrorCode string

const (
	// Input resolution errors
	ErrCodeFetchFailed  ErrorCode = "FETCH_FAILED"
	ErrCodeBadStatus    ErrorCode = "BAD_HTTP_STATUS"
	ErrCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFileError    ErrorCode = "FILE_ERROR"

	// Configuration errors
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrCodeModelNotSupported  ErrorCode = "MODEL_NOT_SUPPORTED"
	ErrCodeLocaleNotSupported ErrorCode = "LOCALE_NOT_SUPPORTED"
	ErrCodeBackendInit        ErrorCode = "BACKEND_INIT_FAILED"

	// Extraction errors
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrCodeParseFailed      ErrorCode = "PARSE_FAILED"
	ErrCodeToolMissing      ErrorCode = "TOOL_MISSING"

	// Segmentation errors
	ErrCodeTokenizationDegraded ErrorCode = "TOKENIZATION_DEGRADED"
	ErrCodeInferenceFailed      ErrorCode = "INFERENCE_FAILED"

	// System errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// DocChunkError represents a structured error in DocChunk
type DocChunkError struct {
	Type       types.ErrorType        `json:"type"`
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *DocChunkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *DocChunkError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *DocChunkError) WithDetail(key string, value interface{}) *DocChunkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID adds a request ID to the error
func (e *DocChunkError) WithRequestID(requestID string) *DocChunkError {
	e.RequestID = requestID
	return e
}

// WithStackTrace adds a stack trace to the error
func (e *DocChunkError) WithStackTrace() *DocChunkError {
	e.StackTrace = getStackTrace()
	return e
}

// NewDocChunkError creates a new DocChunk error
func NewDocChunkError(errType types.ErrorType, code ErrorCode, message string) *DocChunkError {
	return &DocChunkError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// NewDocChunkErrorWithCause creates a new DocChunk error with a cause
func NewDocChunkErrorWithCause(errType types.ErrorType, code ErrorCode, message string, cause error) *DocChunkError {
	return &DocChunkError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Input resolution error constructors
func NewFetchError(url string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeExternal, ErrCodeFetchFailed,
		fmt.Sprintf("failed to fetch %s", url), cause).WithDetail("url", url)
}

func NewBadStatusError(url string, status int) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeExternal, ErrCodeBadStatus,
		fmt.Sprintf("fetch of %s returned status %d", url, status)).
		WithDetail("url", url).WithDetail("status", status)
}

func NewFileNotFoundError(filePath string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeNotFound, ErrCodeFileNotFound,
		fmt.Sprintf("file not found: %s", filePath)).WithDetail("file_path", filePath)
}

func NewFileError(filePath string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeInternal, ErrCodeFileError,
		fmt.Sprintf("failed to read file: %s", filePath), cause).WithDetail("file_path", filePath)
}

// Configuration error constructors
func NewConfigInvalidError(message string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeValidation, ErrCodeConfigInvalid, message)
}

func NewModelNotSupportedError(model string, supported []string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeValidation, ErrCodeModelNotSupported,
		fmt.Sprintf("model %s is not supported, must be one of: %s", model, strings.Join(supported, ", "))).
		WithDetail("model", model).WithDetail("supported_models", supported)
}

func NewLocaleNotSupportedError(lang string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeValidation, ErrCodeLocaleNotSupported,
		fmt.Sprintf("language %s is not supported", lang)).WithDetail("lang", lang)
}

func NewBackendInitError(model string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeValidation, ErrCodeBackendInit,
		fmt.Sprintf("failed to initialize segmentation backend for model %s", model), cause).
		WithDetail("model", model)
}

// Extraction error constructors
func NewExtractionError(format string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeExternal, ErrCodeExtractionFailed,
		fmt.Sprintf("failed to extract text from %s document", format), cause).
		WithDetail("format", format)
}

func NewParseFailedError(message string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeExternal, ErrCodeParseFailed, message, cause)
}

func NewToolMissingError(tool string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeExternal, ErrCodeToolMissing,
		fmt.Sprintf("required external tool not found: %s", tool)).WithDetail("tool", tool)
}

// Segmentation error constructors
func NewTokenizationDegradedError(stage string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeDegradation, ErrCodeTokenizationDegraded,
		fmt.Sprintf("tokenization produced no spans at %s stage, passing block through", stage)).
		WithDetail("stage", stage)
}

func NewInferenceError(model string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeExternal, ErrCodeInferenceFailed,
		fmt.Sprintf("segmentation inference failed for model %s", model), cause).
		WithDetail("model", model)
}

// System error constructors
func NewInternalError(message string) *DocChunkError {
	return NewDocChunkError(types.ErrorTypeInternal, ErrCodeInternal, message)
}

func NewInternalErrorWithCause(message string, cause error) *DocChunkError {
	return NewDocChunkErrorWithCause(types.ErrorTypeInternal, ErrCodeInternal, message, cause)
}

// Helper functions
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var trace strings.Builder
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		trace.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
	}

	return trace.String()
}

// IsDocChunkError checks if an error is a DocChunkError
func IsDocChunkError(err error) bool {
	_, ok := err.(*DocChunkError)
	return ok
}

// GetDocChunkError extracts a DocChunkError from an error
func GetDocChunkError(err error) *DocChunkError {
	if dcErr, ok := err.(*DocChunkError); ok {
		return dcErr
	}
	return nil
}

// IsFetchError checks if an error came from input retrieval
func IsFetchError(err error) bool {
	if dcErr := GetDocChunkError(err); dcErr != nil {
		return dcErr.Code == ErrCodeFetchFailed || dcErr.Code == ErrCodeBadStatus
	}
	return false
}

// IsConfigurationError checks if an error is fatal at construction time
func IsConfigurationError(err error) bool {
	if dcErr := GetDocChunkError(err); dcErr != nil {
		return dcErr.Type == types.ErrorTypeValidation
	}
	return false
}

// IsExtractionError checks if an error came from binary text extraction
func IsExtractionError(err error) bool {
	if dcErr := GetDocChunkError(err); dcErr != nil {
		return dcErr.Code == ErrCodeExtractionFailed ||
			dcErr.Code == ErrCodeParseFailed ||
			dcErr.Code == ErrCodeToolMissing
	}
	return false
}

// IsDegradation checks if an error records a recovered tokenization fallback
func IsDegradation(err error) bool {
	if dcErr := GetDocChunkError(err); dcErr != nil {
		return dcErr.Type == types.ErrorTypeDegradation
	}
	return false
}

// WrapError wraps an error as a DocChunkError
func WrapError(err error, errType types.ErrorType, code ErrorCode, message string) *DocChunkError {
	return NewDocChunkErrorWithCause(errType, code, message, err)
}

// ErrorList represents a list of errors
type ErrorList struct {
	Errors []*DocChunkError `json:"errors"`
}

// Error implements the error interface
func (el *ErrorList) Error() string {
	var messages []string
	for _, err := range el.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Add adds an error to the list
func (el *ErrorList) Add(err *DocChunkError) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if there are errors
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// ToError returns the ErrorList as an error if it has errors, otherwise nil
func (el *ErrorList) ToError() error {
	if el.HasErrors() {
		return el
	}
	return nil
}

// NewErrorList creates a new error list
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*DocChunkError, 0),
	}
}

// Collect collects multiple errors into an ErrorList
func Collect(errors ...*DocChunkError) *ErrorList {
	el := NewErrorList()
	for _, err := range errors {
		if err != nil {
			el.Add(err)
		}
	}
	return el
}
