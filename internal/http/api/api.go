package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/http/middleware"
	"github.com/roastkoff/controlposter/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// FromError maps the shared error taxonomy onto an HTTP status and a
// human-readable message, so callers can tell "not found" from "already
// used" from a transient failure.
func FromError(err error) *APIError {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return &APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, errs.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, errs.ErrAlreadyClaimed):
		return &APIError{Code: http.StatusConflict, Message: "pairing code already used"}
	case errors.Is(err, errs.ErrTimeout):
		return &APIError{Code: http.StatusGatewayTimeout, Message: "operation timed out"}
	case errors.Is(err, errs.ErrSubscription):
		return &APIError{Code: http.StatusBadGateway, Message: "live subscription failed"}
	default:
		return &APIError{Code: http.StatusInternalServerError, Message: "operation failed"}
	}
}

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
