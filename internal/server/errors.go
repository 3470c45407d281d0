// Package server provides the HTTP API for GEO visibility scoring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/geo-scorer/internal/fetch"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/pipeline"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

// ForbiddenTierError is returned when a caller asks for more than it is entitled to.
type ForbiddenTierError struct {
	Requested types.Tier
	Entitled  types.Tier
}

func (e *ForbiddenTierError) Error() string {
	return fmt.Sprintf("tier %q exceeds entitlement %q", e.Requested, e.Entitled)
}

// BadRequestError wraps malformed request bodies.
type BadRequestError struct {
	Message string
	Cause   error
}

func (e *BadRequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BadRequestError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	var (
		validationErrs validator.ValidationErrors
		badRequest     *BadRequestError
		unknownTier    *scoring.UnknownTierError
		unknownPillar  *scoring.UnknownPillarError
		forbidden      *ForbiddenTierError
		fetchErr       *fetch.Error
		maxBytes       *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErrs), errors.As(err, &badRequest),
		errors.As(err, &unknownTier), errors.As(err, &unknownPillar),
		errors.Is(err, pipeline.ErrNoInput):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr), errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
