package store

import (
	"context"
	"errors"
	"favplaces/logger"
	"favplaces/models"
	"favplaces/storage"
	"sync"

	"github.com/rs/zerolog"
)

const (
	readFailedMessage  = "favourite places unavailable"
	writeFailedMessage = "cannot store favourite places"
)

type ChangeFunc func(places models.FavouritePlaces)

// Favourites is the durable favourite places list of the (single) user.
// Every change rewrites the whole document. Read-modify-write cycles are
// serialised within the process only, a second process writing the same
// document can still overwrite our changes.
type Favourites struct {
	storage storage.StorageAPI
	path    string
	catalog *Catalog
	log     zerolog.Logger

	// mutex serialises read-modify-write cycles and change notifications
	mutex          sync.Mutex
	listenersMutex sync.RWMutex
	listeners      []ChangeFunc
}

func NewFavourites(s storage.StorageAPI, path string, catalog *Catalog) *Favourites {
	return &Favourites{
		storage: s,
		path:    path,
		catalog: catalog,
		log:     logger.Component("favourites"),
	}
}

// OnChange registers a listener called after every persisted change.
// Listeners run in the order changes are stored, while no other change can
// be made, so they should return quickly and never change the favourites.
func (f *Favourites) OnChange(fn ChangeFunc) {
	f.listenersMutex.Lock()
	defer f.listenersMutex.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Watch calls fn with the current list while no change can be stored. A
// listener registered elsewhere by fn sees every change made after that list.
func (f *Favourites) Watch(ctx context.Context, fn ChangeFunc) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	current, err := f.load(ctx)
	if err != nil {
		return err
	}
	fn(current)
	return nil
}

func (f *Favourites) ListFavourites(ctx context.Context) (models.FavouritePlaces, error) {
	return f.load(ctx)
}

// AddFavourite appends the catalog place to the list. Adding a place that is
// already there returns the list unchanged.
func (f *Favourites) AddFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	place, err := f.catalog.Find(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return f.update(ctx, func(current models.FavouritePlaces) (models.FavouritePlaces, bool) {
		if current.Contains(place.ID) {
			return current, false
		}
		return current.With(place), true
	})
}

// RemoveFavourite drops the place from the list, unknown ids are a no-op
func (f *Favourites) RemoveFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	return f.update(ctx, func(current models.FavouritePlaces) (models.FavouritePlaces, bool) {
		if !current.Contains(placeID) {
			return current, false
		}
		return current.Without(placeID), true
	})
}

func (f *Favourites) update(ctx context.Context, change func(models.FavouritePlaces) (models.FavouritePlaces, bool)) (models.FavouritePlaces, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	current, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	updated, changed := change(current)
	if !changed {
		return updated, nil
	}
	if err = storage.SaveJSON(ctx, f.storage, f.path, updated); err != nil {
		f.log.Error().Err(err).Str("document", f.path).Msg("Cannot write favourites")
		return nil, models.Persistence(writeFailedMessage, err)
	}

	f.log.Debug().Strs("ids", updated.IDs()).Msg("Favourites stored")
	f.listenersMutex.RLock()
	listeners := f.listeners
	f.listenersMutex.RUnlock()
	for _, fn := range listeners {
		fn(updated.Clone())
	}
	return updated, nil
}

func (f *Favourites) load(ctx context.Context) (models.FavouritePlaces, error) {
	places := models.FavouritePlaces{}
	err := storage.LoadJSON(ctx, f.storage, f.path, &places)
	if errors.Is(err, storage.ErrNotExist) {
		return models.FavouritePlaces{}, nil
	}
	if err != nil {
		f.log.Error().Err(err).Str("document", f.path).Msg("Cannot read favourites")
		return nil, models.Unavailable(readFailedMessage, err)
	}
	if places == nil {
		places = models.FavouritePlaces{}
	}
	return places, nil
}
