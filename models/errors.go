package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeCapture      = "CAPTURE_FAILED"
	ErrCodeExtraction   = "EXTRACTION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// Generation-related error codes for /api/v1/clone.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// Stage identifies the pipeline step that failed.
type Stage string

const (
	StageNavigation  Stage = "navigation"
	StageCapture     Stage = "capture"
	StageStructure   Stage = "structure"
	StageStyle       Stage = "style"
	StageLayout      Stage = "layout"
	StageInteraction Stage = "interaction"
	StageMedia       Stage = "media"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// ScrapeError is the infrastructure error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// NavigationError reports that the page could not be opened and stabilised.
type NavigationError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *NavigationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("navigation to %s timed out", e.URL)
	}
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// CaptureError reports a screenshot failure for one viewport.
type CaptureError struct {
	Viewport string
	Err      error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Viewport, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// ExtractionError reports a failed DOM or style query.
type ExtractionError struct {
	Step string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PipelineError is the single terminal failure of a scrape. Stage names
// the step that aborted the run; Err is the stage-specific cause.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// ErrorCode maps any error produced by the service to an API error code.
func ErrorCode(err error) string {
	var (
		se  *ScrapeError
		nav *NavigationError
		ce  *CaptureError
		ee  *ExtractionError
	)
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.As(err, &nav):
		if nav.Timeout {
			return ErrCodeTimeout
		}
		return ErrCodeNavigation
	case errors.As(err, &ce):
		return ErrCodeCapture
	case errors.As(err, &ee):
		return ErrCodeExtraction
	default:
		return ErrCodeInternal
	}
}

// Detail converts any service error into an API-facing ErrorDetail.
func Detail(err error) *ErrorDetail {
	var se *ScrapeError
	if errors.As(err, &se) && !isPipeline(err) {
		return se.ToDetail()
	}
	d := &ErrorDetail{Code: ErrorCode(err), Message: err.Error()}
	var pe *PipelineError
	if errors.As(err, &pe) {
		d.Stage = string(pe.Stage)
	}
	return d
}

func isPipeline(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe)
}
