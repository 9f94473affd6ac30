// Package errors provides the user-facing error taxonomy shared by all
// intent handlers. Every error a handler can surface to the user maps to one
// of these categories; none of them aborts the conversation.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Required entity missing from the payload.
	ErrCodeAbsentInput ErrorCode = "ABSENT_INPUT"
	// Entity present but yielded no valid date or number.
	ErrCodeUnparseableInput ErrorCode = "UNPARSEABLE_INPUT"
	// Calendar or places provider returned an error.
	ErrCodeProviderFailure ErrorCode = "PROVIDER_FAILURE"
	// No more result pages are available. Informational, not a fault.
	ErrCodeExhaustedPagination ErrorCode = "EXHAUSTED_PAGINATION"
	// The chosen item was not found on the current page.
	ErrCodeSelectionMiss ErrorCode = "SELECTION_MISS"
	// The intent name mapped to no handler.
	ErrCodeUnknownIntent ErrorCode = "UNKNOWN_INTENT"
	// The requested operation is not implemented by the provider.
	ErrCodeNotSupported ErrorCode = "NOT_SUPPORTED"
)

// AssistantError is a structured error carrying the category, a diagnostic
// message for logs, and the canned reply shown to the user.
type AssistantError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AssistantError) Error() string {
	return fmt.Sprintf("AssistantError[%s]: %s", e.Code, e.Message)
}

// UserReply returns the text to send back to the user for this error.
func (e *AssistantError) UserReply() string {
	return e.Reply
}

// NewAbsentInput signals a required entity was missing. The context string
// names the action the user appeared to attempt ("create an appointment").
func NewAbsentInput(context string) *AssistantError {
	return &AssistantError{
		Code:      ErrCodeAbsentInput,
		Message:   "required entity missing",
		Details:   context,
		Reply:     fmt.Sprintf("I think you're trying to %s but I didn't catch the details. Can you try again?", context),
		Timestamp: time.Now().UTC(),
	}
}

// NewUnparseableInput signals an entity was present but unusable. The user
// gets the same reply as for absent input; the category differs only in logs.
func NewUnparseableInput(context string, cause error) *AssistantError {
	details := context
	if cause != nil {
		details = fmt.Sprintf("%s: %v", context, cause)
	}
	return &AssistantError{
		Code:      ErrCodeUnparseableInput,
		Message:   "entity present but unparseable",
		Details:   details,
		Reply:     fmt.Sprintf("I think you're trying to %s but I didn't catch the details. Can you try again?", context),
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderFailure wraps a calendar or places provider error. No retry is
// attempted at this layer; the session state the caller holds is unchanged.
func NewProviderFailure(service string, cause error) *AssistantError {
	return &AssistantError{
		Code:      ErrCodeProviderFailure,
		Message:   fmt.Sprintf("provider '%s' call failed", service),
		Details:   cause.Error(),
		Reply:     "Something's wrong, I couldn't reach your " + service + ". Can you try again later?",
		Timestamp: time.Now().UTC(),
	}
}

// NewExhaustedPagination signals there are no further result pages.
func NewExhaustedPagination() *AssistantError {
	return &AssistantError{
		Code:      ErrCodeExhaustedPagination,
		Message:   "no continuation token and already on last cached page",
		Reply:     "There's no more results.",
		Timestamp: time.Now().UTC(),
	}
}

// NewSelectionMiss signals the selector matched nothing on the current page.
func NewSelectionMiss(details string) *AssistantError {
	return &AssistantError{
		Code:      ErrCodeSelectionMiss,
		Message:   "selection did not match any item on the current page",
		Details:   details,
		Reply:     "I'm sorry, I didn't understand that. Can you try again?",
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownIntent signals the payload's intent name mapped to no handler.
func NewUnknownIntent(utterance string) *AssistantError {
	return &AssistantError{
		Code:      ErrCodeUnknownIntent,
		Message:   "no handler registered for intent",
		Details:   utterance,
		Reply:     fmt.Sprintf("I didn't understand %q.", utterance),
		Timestamp: time.Now().UTC(),
	}
}

// NewNotSupported signals an operation the active provider does not implement.
func NewNotSupported(operation string) *AssistantError {
	return &AssistantError{
		Code:      ErrCodeNotSupported,
		Message:   "operation not supported by provider",
		Details:   operation,
		Reply:     fmt.Sprintf("Sorry, but %s hasn't been implemented yet.", operation),
		Timestamp: time.Now().UTC(),
	}
}

// AsAssistantError extracts an *AssistantError from an error chain.
func AsAssistantError(err error) (*AssistantError, bool) {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err carries the given category.
func IsCode(err error, code ErrorCode) bool {
	if ae, ok := AsAssistantError(err); ok {
		return ae.Code == code
	}
	return false
}

// GenericApology is the reply for truly unexpected failures that bubble to
// the top-level turn handler.
const GenericApology = "Something's wrong on my end. Can you try again?"
