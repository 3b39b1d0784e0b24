package inbox

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports a client-supplied message field that cannot be accepted.
// Its text is safe to return to the client.
type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string { return e.msg }

// MissingField reports that field is absent from the payload
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, msg: `Missing Field "` + field + `"`}
}

// InvalidField reports that field is present but unusable, reason completes the sentence
func InvalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, msg: `Field "` + field + `" ` + reason}
}

// InvalidPayload reports a body that is not usable as a whole
func InvalidPayload(reason string) *ValidationError {
	return &ValidationError{msg: reason}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return InvalidField(fe.Field(), "must be a string and have non-zero length")
	default:
		return InvalidField(fe.Field(), "failed "+fe.Tag()+" check")
	}
}
