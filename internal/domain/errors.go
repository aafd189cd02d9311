package domain

import "errors"

// Sentinel errors returned by the repository and workflow layers. The HTTP
// boundary maps these onto structured error responses.
var (
	// ErrPostNotFound indicates an unknown post id.
	ErrPostNotFound = errors.New("post not found")
	// ErrSecretMismatch indicates the supplied secret does not match the
	// stored digest.
	ErrSecretMismatch = errors.New("secret mismatch")
	// ErrAlreadyAnswered indicates a visitor mutation or a staff answer was
	// attempted on a post that already carries an answer.
	ErrAlreadyAnswered = errors.New("post already answered")
	// ErrNotAnswered indicates a staff answer edit/delete was attempted on a
	// post with no answer.
	ErrNotAnswered = errors.New("post not answered")
)

// ValidationError reports missing or empty required fields on submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msg := "required field missing: " + e.Fields[0]
	for _, f := range e.Fields[1:] {
		msg += ", " + f
	}
	return msg
}

// NewValidationError builds a ValidationError for the named fields.
func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}
