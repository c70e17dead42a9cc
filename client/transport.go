package client

import (
	"context"
	"favplaces/logger"
	"favplaces/models"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Transport is everything the synchroniser needs from the places API
type Transport interface {
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListFavourites(ctx context.Context) (models.FavouritePlaces, error)
	AddFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error)
	RemoveFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error)
}

type placesResponse struct {
	Places []models.Place `json:"places"`
}

type userPlacesResponse struct {
	UserPlaces models.FavouritePlaces `json:"userPlaces"`
}

type userPlaceRequest struct {
	PlaceID string `json:"placeId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPTransport talks to the places API over HTTP
type HTTPTransport struct {
	client *resty.Client
	log    zerolog.Logger
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPTransport{
		client: client,
		log:    logger.Component("transport"),
	}
}

func (t *HTTPTransport) ListPlaces(ctx context.Context) ([]models.Place, error) {
	result := placesResponse{}
	err := t.do(ctx, t.request(ctx).SetResult(&result), http.MethodGet, "/places")
	return result.Places, err
}

func (t *HTTPTransport) ListFavourites(ctx context.Context) (models.FavouritePlaces, error) {
	result := placesResponse{}
	err := t.do(ctx, t.request(ctx).SetResult(&result), http.MethodGet, "/user-places")
	if err != nil {
		return nil, err
	}
	return models.FavouritePlaces(result.Places), nil
}

func (t *HTTPTransport) AddFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	result := userPlacesResponse{}
	req := t.request(ctx).
		SetBody(userPlaceRequest{PlaceID: placeID}).
		SetResult(&result)
	if err := t.do(ctx, req, http.MethodPut, "/user-places"); err != nil {
		return nil, err
	}
	return result.UserPlaces, nil
}

func (t *HTTPTransport) RemoveFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	result := userPlacesResponse{}
	req := t.request(ctx).
		SetPathParam("id", placeID).
		SetResult(&result)
	if err := t.do(ctx, req, http.MethodDelete, "/user-places/{id}"); err != nil {
		return nil, err
	}
	return result.UserPlaces, nil
}

func (t *HTTPTransport) request(ctx context.Context) *resty.Request {
	return t.client.R().SetContext(ctx).SetError(&errorResponse{})
}

func (t *HTTPTransport) do(ctx context.Context, req *resty.Request, method, url string) error {
	resp, err := req.Execute(method, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.Warn().Err(err).Str("method", method).Str("url", url).Msg("Request failed")
		return models.Network("cannot reach the places service", err)
	}
	if !resp.IsError() {
		return nil
	}
	message := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorResponse); ok {
		if body.Error != "" {
			message = body.Error
		} else if body.Message != "" {
			message = body.Message
		}
	}
	t.log.Warn().Int("status", resp.StatusCode()).Str("method", method).Str("url", url).Str("error", message).Msg("Request rejected")
	return models.NewError(kindForStatus(resp.StatusCode()), message, nil)
}

func kindForStatus(status int) models.ErrorKind {
	switch status {
	case http.StatusServiceUnavailable:
		return models.KindUnavailable
	case http.StatusNotFound:
		return models.KindNotFound
	case http.StatusInternalServerError:
		return models.KindPersistence
	}
	return models.KindNetwork
}
