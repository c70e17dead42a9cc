package client

import (
	"context"
	"favplaces/logger"
	"favplaces/models"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const (
	LoadFailedMessage      = "Something went wrong fetching your favorite places. Please try again later."
	AvailableFailedMessage = "Something went wrong fetching the available places. Please try again later."
	AddFailedMessage       = "Failed to store selected place."
	RemoveFailedMessage    = "Failed to remove selected place."
)

// Synchronizer keeps a local copy of the favourite places in step with the server.
// Mutations are applied to the local copy first and rolled back if the server rejects them.
type Synchronizer struct {
	transport Transport
	reporter  Reporter
	cache     *cell
	fetching  atomic.Int32
	// one slot, holding it means owning the cache for a whole load or mutation
	queue chan struct{}
	log   zerolog.Logger
}

func NewSynchronizer(transport Transport, reporter Reporter) *Synchronizer {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Synchronizer{
		transport: transport,
		reporter:  reporter,
		cache:     newCell(),
		queue:     make(chan struct{}, 1),
		log:       logger.Component("synchronizer"),
	}
}

func (s *Synchronizer) Places() View {
	return s.cache
}

// Fetching reports whether a Load is in flight
func (s *Synchronizer) Fetching() bool {
	return s.fetching.Load() > 0
}

// Load replaces the local copy with the server's list
func (s *Synchronizer) Load(ctx context.Context) (models.FavouritePlaces, error) {
	s.fetching.Add(1)
	defer s.fetching.Add(-1)
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	places, err := s.transport.ListFavourites(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, s.fail(err, LoadFailedMessage)
	}
	s.cache.set(places)
	s.log.Debug().Int("count", len(places)).Msg("Favourite places loaded")
	return places.Clone(), nil
}

// Available returns the catalog, the local copy is not touched
func (s *Synchronizer) Available(ctx context.Context) ([]models.Place, error) {
	places, err := s.transport.ListPlaces(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, s.fail(err, AvailableFailedMessage)
	}
	return places, nil
}

// Add shows place as a favourite right away and stores it on the server
func (s *Synchronizer) Add(ctx context.Context, place models.Place) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	prev := s.cache.Places()
	if !prev.Contains(place.ID) {
		s.cache.set(prev.With(place))
	}
	_, err := s.transport.AddFavourite(ctx, place.ID)
	return s.settle(ctx, prev, err, AddFailedMessage)
}

// Remove drops the place from the local copy right away and from the server
func (s *Synchronizer) Remove(ctx context.Context, place models.Place) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	prev := s.cache.Places()
	if prev.Contains(place.ID) {
		s.cache.set(prev.Without(place.ID))
	}
	_, err := s.transport.RemoveFavourite(ctx, place.ID)
	return s.settle(ctx, prev, err, RemoveFailedMessage)
}

// settle finishes a mutation. The cache outlives the caller, so a failed
// mutation is always rolled back, but a cancelled caller gets no report.
func (s *Synchronizer) settle(ctx context.Context, prev models.FavouritePlaces, err error, message string) error {
	if err == nil {
		return nil
	}
	s.cache.set(prev)
	if ctx.Err() != nil {
		s.log.Debug().Err(err).Msg("Mutation abandoned, rolled back")
		return ctx.Err()
	}
	return s.fail(err, message)
}

func (s *Synchronizer) fail(err error, message string) error {
	kind := models.KindOf(err)
	if kind == models.KindUnknown {
		kind = models.KindNetwork
	}
	s.log.Warn().Err(err).Str("kind", kind.String()).Msg(message)
	s.reporter.Report(message)
	return models.NewError(kind, message, err)
}

func (s *Synchronizer) acquire(ctx context.Context) error {
	select {
	case s.queue <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synchronizer) release() {
	<-s.queue
}
