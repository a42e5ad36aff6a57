package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrRateLimited      = errors.New("generation rate limited")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrNotConfigured    = errors.New("not configured")
	ErrInvalidArgument  = errors.New("invalid argument")
)

const (
	msgGenerationFailed = "We couldn't generate that right now. Please try again."
	msgRateLimited      = "The AI service is busy or the usage quota was exceeded. Please try again later."
	msgUnauthorized     = "You must be logged in."
	msgRoadmapHidden    = "Roadmap not found or you don't have permission to view it."
	msgNotConfigured    = "Server not configured for this feature."
	msgInvalidIDToken   = "Your sign-in token is invalid or expired. Please sign in again."
	msgInvalidArgument  = "The request was invalid."
)

// ToAPIError converts a service error to the HTTP boundary shape. An
// *apierr.Error already in the chain wins; Forbidden and NotFound share one
// message so callers cannot discover other users' roadmaps.
func ToAPIError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrRateLimited):
		return apierr.WithMessage(http.StatusTooManyRequests, "rate_limited", msgRateLimited, err)
	case errors.Is(err, ErrGenerationFailed):
		return apierr.WithMessage(http.StatusBadGateway, "generation_failed", msgGenerationFailed, err)
	case errors.Is(err, ErrInvalidIDToken):
		return apierr.WithMessage(http.StatusUnauthorized, "invalid_token", msgInvalidIDToken, err)
	case errors.Is(err, ErrUnauthorized):
		return apierr.WithMessage(http.StatusUnauthorized, "unauthorized", msgUnauthorized, err)
	case errors.Is(err, ErrForbidden):
		return apierr.WithMessage(http.StatusNotFound, "not_found", msgRoadmapHidden, err)
	case errors.Is(err, ErrNotFound):
		return apierr.WithMessage(http.StatusNotFound, "not_found", msgRoadmapHidden, err)
	case errors.Is(err, ErrNotConfigured):
		return apierr.WithMessage(http.StatusServiceUnavailable, "not_configured", msgNotConfigured, err)
	case errors.Is(err, ErrInvalidArgument):
		return apierr.WithMessage(http.StatusBadRequest, "invalid_argument", msgInvalidArgument, err)
	}
	return apierr.From(err)
}

// invalidArg wraps a user-facing validation message.
func invalidArg(message string, cause error) error {
	if cause == nil {
		cause = ErrInvalidArgument
	}
	return apierr.WithMessage(http.StatusBadRequest, "invalid_argument", message, errors.Join(ErrInvalidArgument, cause))
}
