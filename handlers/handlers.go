package handlers

import (
	"favplaces/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

var (
	// Predefined errors
	NotFoundResponse   = MessageResponse{"404 - Not Found"}
	BadRequestResponse = Response{"placeId is required"}
)

// StatusFor maps an error kind to the HTTP status the client expects
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindUnavailable:
		return http.StatusServiceUnavailable
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindPersistence:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func replyError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), Response{Error: models.MessageOf(err)})
}

// NotFound replies to routes nobody handles. OPTIONS never gets here, CORS answers it first.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, NotFoundResponse)
}
