package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and transport errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSubmitFailed       = fmt.Errorf("analysis submission failed")
	ErrTransport          = fmt.Errorf("channel transport failed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Task errors
	ErrTaskNotFound = fmt.Errorf("task not found")
	ErrTaskFailed   = fmt.Errorf("analysis failed")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
