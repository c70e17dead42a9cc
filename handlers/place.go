package handlers

import (
	"favplaces/models"
	"favplaces/store"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserPlaceRequest struct {
	PlaceID string `json:"placeId" binding:"required"`
}

type PlacesResponse struct {
	Places []models.Place `json:"places"`
}

type UserPlacesResponse struct {
	UserPlaces models.FavouritePlaces `json:"userPlaces"`
}

type PlacesHandler struct {
	Catalog    *store.Catalog
	Favourites *store.Favourites
	// Delay is added before GET /places answers, zero means none
	Delay time.Duration
}

// PlaceList returns all available places
func (h *PlacesHandler) PlaceList(c *gin.Context) {
	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	places, err := h.Catalog.ListPlaces(c.Request.Context())
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlacesResponse{Places: places})
}

// UserPlaceList returns the user's favourite places
func (h *PlacesHandler) UserPlaceList(c *gin.Context) {
	places, err := h.Favourites.ListFavourites(c.Request.Context())
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlacesResponse{Places: places})
}

// UserPlaceAdd adds the catalog place from the body to the favourites
func (h *PlacesHandler) UserPlaceAdd(c *gin.Context) {
	r := UserPlaceRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	places, err := h.Favourites.AddFavourite(c.Request.Context(), r.PlaceID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserPlacesResponse{UserPlaces: places})
}

// UserPlaceRemove removes a place from the favourites, unknown ids are fine
func (h *PlacesHandler) UserPlaceRemove(c *gin.Context) {
	places, err := h.Favourites.RemoveFavourite(c.Request.Context(), c.Param("id"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserPlacesResponse{UserPlaces: places})
}
