package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorCase pairs a sentinel error with the status and message to send
// when a use case returns it.
type errorCase struct {
	Err     error
	Status  int
	Message string
}

func resolveErrorCase(err error, cases []errorCase) (errorCase, bool) {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			return cs, true
		}
	}
	return errorCase{}, false
}

// writeDomainError picks a response for err from cases, falling back to
// the given status and message for anything unrecognized.
func writeDomainError(c *gin.Context, err error, cases []errorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	if cs, ok := resolveErrorCase(err, cases); ok {
		c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
		return
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
