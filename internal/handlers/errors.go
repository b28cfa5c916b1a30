package handlers

import (
	"errors"
	"log"

	"github.com/danielgtaylor/huma/v2"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

const genericFailureMessage = "Failed to process registration. Please try again."

// validationProblem turns validator output into a 422 whose details point at
// the offending body fields.
func validationProblem(err error) error {
	var verr *registration.ValidationError
	if !errors.As(err, &verr) {
		log.Printf("Unexpected validation error: %v", err)
		return huma.Error500InternalServerError(genericFailureMessage)
	}

	details := make([]error, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + f.Field,
			Message:  f.Message,
		})
	}
	return huma.Error422UnprocessableEntity("Validation failed", details...)
}

func fieldProblem(field, message string, value any) error {
	return huma.Error422UnprocessableEntity("Validation failed", &huma.ErrorDetail{
		Location: "body." + field,
		Message:  message,
		Value:    value,
	})
}

// storeProblem maps a storage error to a response: 404 for missing records,
// a logged 500 for everything else.
func storeProblem(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return huma.Error404NotFound(what + " not found")
	}
	log.Printf("Failed to access %s: %v", what, err)
	return huma.Error500InternalServerError("Failed to access " + what)
}
