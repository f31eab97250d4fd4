package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/requestdata"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type APIError struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps a service error onto the wire: classified errors
// keep their status and code, everything else is an opaque 500.
func RespondServiceError(c *gin.Context, err error) {
	if e := apperr.From(err); e != nil {
		c.JSON(e.Status, ErrorEnvelope{
			Error: APIError{
				Message:  e.Error(),
				Code:     e.Code,
				Fallback: e.Fallback,
			},
		})
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// currentUser pulls the authenticated caller out of the request context; the
// auth middleware guarantees it is present on protected routes.
func currentUser(c *gin.Context) *types.User {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return nil
	}
	return rd.User
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
