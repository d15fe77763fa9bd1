package errors

import (
	"errors"
	"fmt"
	"strings"

	"grammarcheck/internal/shared/util"
)

type ErrorCode string

// Build-time codes abort generation; nothing downstream can proceed.
const (
	CodeBuildArtifactsMissing ErrorCode = "BUILD_ARTIFACTS_MISSING"
	CodeUnsupportedTarget     ErrorCode = "UNSUPPORTED_TARGET"
	CodeArtifactNotFound      ErrorCode = "ARTIFACT_NOT_FOUND"
	CodeInvalidArchive        ErrorCode = "INVALID_ARCHIVE"
	CodeMetadataMissing       ErrorCode = "METADATA_MISSING"
	CodeMetadataParse         ErrorCode = "METADATA_PARSE_ERROR"
	CodeGeneration            ErrorCode = "GENERATION_ERROR"
	CodeInvalidConfig         ErrorCode = "INVALID_CONFIG"
)

// Run-time codes are recorded per grammar and never abort a run.
const (
	CodeGrammarNotLoaded ErrorCode = "GRAMMAR_NOT_LOADED"
	CodeLanguageBinding  ErrorCode = "LANGUAGE_BINDING_ERROR"
	CodeNotSupported     ErrorCode = "NOT_SUPPORTED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath     = "path"
	CtxLanguage = "language"
	CtxSymbol   = "symbol"
	CtxTarget   = "target"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		keys := util.SortedStringKeys(e.Context)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " (" + strings.Join(parts, " ") + ")"
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a context value, promoting plain errors to CodeInternal.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost DomainError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// Cause returns the error a DomainError wraps, or err itself.
func Cause(err error) error {
	var de *DomainError
	if errors.As(err, &de) && de.Err != nil {
		return de.Err
	}
	return err
}
