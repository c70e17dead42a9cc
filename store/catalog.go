package store

import (
	"context"
	"favplaces/logger"
	"favplaces/models"
	"favplaces/storage"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const catalogCacheKey = "catalog"

// Catalog is the read-only list of places every user can pick from
type Catalog struct {
	storage storage.StorageAPI
	path    string
	cache   *cache.Cache // nil when caching is disabled
	log     zerolog.Logger
}

func NewCatalog(s storage.StorageAPI, path string, ttl time.Duration) *Catalog {
	c := &Catalog{
		storage: s,
		path:    path,
		log:     logger.Component("catalog"),
	}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

// ListPlaces returns all places. Callers must not modify the returned slice.
func (c *Catalog) ListPlaces(ctx context.Context) ([]models.Place, error) {
	if c.cache != nil {
		if places, ok := c.cache.Get(catalogCacheKey); ok {
			return places.([]models.Place), nil
		}
	}
	places := []models.Place{}
	if err := storage.LoadJSON(ctx, c.storage, c.path, &places); err != nil {
		c.log.Error().Err(err).Str("document", c.path).Msg("Cannot read catalog")
		return nil, models.Unavailable("catalog unavailable", err)
	}
	if c.cache != nil {
		c.cache.SetDefault(catalogCacheKey, places)
	}
	return places, nil
}

// Find resolves a single place, failing with a not found error for unknown ids
func (c *Catalog) Find(ctx context.Context, id string) (models.Place, error) {
	places, err := c.ListPlaces(ctx)
	if err != nil {
		return models.Place{}, err
	}
	place, ok := models.FindPlace(places, id)
	if !ok {
		return models.Place{}, models.NotFound("place " + id + " not found")
	}
	return place, nil
}

// Invalidate drops the cached catalog
func (c *Catalog) Invalidate() {
	if c.cache != nil {
		c.cache.Delete(catalogCacheKey)
	}
}
