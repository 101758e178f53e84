package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/http/response"
)

// respondDomainError maps engine sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with the fallback code.
func respondDomainError(c *gin.Context, fallbackCode string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, domain.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrStaleSession):
		response.RespondError(c, http.StatusConflict, "stale_session", err)
	case errors.Is(err, domain.ErrIllegalTransition):
		response.RespondError(c, http.StatusConflict, "illegal_transition", err)
	case errors.Is(err, domain.ErrPoolExhausted):
		response.RespondError(c, http.StatusConflict, "pool_exhausted", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, fallbackCode, err)
	}
}
