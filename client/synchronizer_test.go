package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"favplaces/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	p1 = models.Place{ID: "p1", Title: "Forest Waterfall"}
	p2 = models.Place{ID: "p2", Title: "Sahara Desert Dunes"}
	p3 = models.Place{ID: "p3", Title: "Sunset Cliffs"}
)

type fakeTransport struct {
	mutex      sync.Mutex
	catalog    []models.Place
	favourites models.FavouritePlaces
	err        error
	// when set every call blocks until it receives the error it should return
	results chan error
	calls   int
}

func (f *fakeTransport) call() error {
	f.mutex.Lock()
	f.calls++
	results, err := f.results, f.err
	f.mutex.Unlock()
	if results != nil {
		return <-results
	}
	return err
}

func (f *fakeTransport) callCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

func (f *fakeTransport) ListPlaces(ctx context.Context) ([]models.Place, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.catalog, nil
}

func (f *fakeTransport) ListFavourites(ctx context.Context) (models.FavouritePlaces, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.favourites.Clone(), nil
}

func (f *fakeTransport) AddFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if place, ok := models.FindPlace(f.catalog, placeID); ok {
		f.favourites = f.favourites.With(place)
	}
	return f.favourites.Clone(), nil
}

func (f *fakeTransport) RemoveFavourite(ctx context.Context, placeID string) (models.FavouritePlaces, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.favourites = f.favourites.Without(placeID)
	return f.favourites.Clone(), nil
}

type recordingReporter struct {
	mutex    sync.Mutex
	messages []string
}

func (r *recordingReporter) Report(message string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingReporter) Messages() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]string{}, r.messages...)
}

func newTestSynchronizer(t *testing.T, favourites ...models.Place) (*Synchronizer, *fakeTransport, *recordingReporter) {
	t.Helper()
	transport := &fakeTransport{
		catalog:    []models.Place{p1, p2, p3},
		favourites: models.FavouritePlaces(favourites).Clone(),
	}
	reporter := &recordingReporter{}
	s := NewSynchronizer(transport, reporter)
	if len(favourites) > 0 {
		_, err := s.Load(context.Background())
		require.NoError(t, err)
	}
	return s, transport, reporter
}

// async runs fn in the background and returns a channel with its result
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not finish")
		return nil
	}
}

func TestLoad(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t)
	assert.Equal(t, models.FavouritePlaces{}, s.Places().Places())

	var seen [][]string
	s.Places().Subscribe(func(places models.FavouritePlaces) {
		seen = append(seen, places.IDs())
	})
	transport.favourites = models.FavouritePlaces{p2, p1}

	places, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, places.IDs())
	assert.Equal(t, []string{"p2", "p1"}, s.Places().Places().IDs())
	assert.Equal(t, [][]string{{"p2", "p1"}}, seen)
	assert.False(t, s.Fetching())
	assert.Empty(t, reporter.Messages())
}

func TestLoad_Fetching(t *testing.T) {
	s, transport, _ := newTestSynchronizer(t)
	transport.results = make(chan error)
	assert.False(t, s.Fetching())

	done := async(func() error {
		_, err := s.Load(context.Background())
		return err
	})
	require.Eventually(t, s.Fetching, time.Second, time.Millisecond)
	transport.results <- nil
	require.NoError(t, wait(t, done))
	assert.False(t, s.Fetching())
}

func TestLoad_Error(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1)
	transport.err = models.Unavailable("favourite places unavailable", nil)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnavailable))
	assert.Equal(t, LoadFailedMessage, models.MessageOf(err))
	assert.Equal(t, []string{LoadFailedMessage}, reporter.Messages())
	assert.Equal(t, []string{"p1"}, s.Places().Places().IDs(), "cache keeps the last good list")
	assert.False(t, s.Fetching())
}

func TestLoad_UnknownErrorIsNetwork(t *testing.T) {
	s, transport, _ := newTestSynchronizer(t)
	transport.err = errors.New("connection reset")

	_, err := s.Load(context.Background())
	assert.Equal(t, models.KindNetwork, models.KindOf(err))
}

func TestAvailable(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p3)

	places, err := s.Available(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, models.FavouritePlaces(places).IDs())

	transport.err = models.Unavailable("catalog unavailable", nil)
	_, err = s.Available(context.Background())
	assert.True(t, errors.Is(err, models.ErrUnavailable))
	assert.Equal(t, []string{AvailableFailedMessage}, reporter.Messages())
	assert.Equal(t, []string{"p3"}, s.Places().Places().IDs(), "catalog errors never touch favourites")
}

func TestAdd_Optimistic(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1)
	transport.results = make(chan error)

	done := async(func() error { return s.Add(context.Background(), p2) })
	require.Eventually(t, func() bool {
		return s.Places().Places().Contains("p2")
	}, time.Second, time.Millisecond, "place shows up before the server answers")
	assert.Equal(t, []string{"p1", "p2"}, s.Places().Places().IDs())

	transport.results <- nil
	require.NoError(t, wait(t, done))
	assert.Equal(t, []string{"p1", "p2"}, s.Places().Places().IDs())
	assert.Empty(t, reporter.Messages())
}

func TestAdd_Rollback(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1, p3)
	transport.results = make(chan error)

	var seen [][]string
	s.Places().Subscribe(func(places models.FavouritePlaces) {
		seen = append(seen, places.IDs())
	})

	done := async(func() error { return s.Add(context.Background(), p2) })
	require.Eventually(t, func() bool {
		return s.Places().Places().Contains("p2")
	}, time.Second, time.Millisecond)
	transport.results <- models.Persistence("cannot store favourite places", nil)

	err := wait(t, done)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrPersistence))
	assert.Equal(t, AddFailedMessage, models.MessageOf(err))
	assert.Equal(t, []string{"p1", "p3"}, s.Places().Places().IDs())
	assert.Equal(t, [][]string{{"p1", "p3", "p2"}, {"p1", "p3"}}, seen)
	assert.Equal(t, []string{AddFailedMessage}, reporter.Messages())
}

func TestAdd_AlreadyFavourite(t *testing.T) {
	s, transport, _ := newTestSynchronizer(t, p1, p2)

	notified := 0
	s.Places().Subscribe(func(models.FavouritePlaces) { notified++ })

	require.NoError(t, s.Add(context.Background(), p1))
	assert.Equal(t, []string{"p1", "p2"}, s.Places().Places().IDs())
	assert.Equal(t, 0, notified)
	assert.Equal(t, 2, transport.callCount(), "load and the idempotent add both reach the server")
}

func TestRemove(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1, p2, p3)
	transport.results = make(chan error)

	done := async(func() error { return s.Remove(context.Background(), p2) })
	require.Eventually(t, func() bool {
		return !s.Places().Places().Contains("p2")
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"p1", "p3"}, s.Places().Places().IDs())

	transport.results <- nil
	require.NoError(t, wait(t, done))
	assert.Equal(t, []string{"p1", "p3"}, s.Places().Places().IDs())
	assert.Empty(t, reporter.Messages())
}

func TestRemove_Rollback(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1, p2, p3)
	transport.err = models.Persistence("cannot store favourite places", nil)

	err := s.Remove(context.Background(), p2)
	require.Error(t, err)
	assert.Equal(t, RemoveFailedMessage, models.MessageOf(err))
	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Places().Places().IDs(), "original order is restored")
	assert.Equal(t, []string{RemoveFailedMessage}, reporter.Messages())
}

func TestRemove_NotFavourite(t *testing.T) {
	s, _, reporter := newTestSynchronizer(t, p1)
	require.NoError(t, s.Remove(context.Background(), p3))
	assert.Equal(t, []string{"p1"}, s.Places().Places().IDs())
	assert.Empty(t, reporter.Messages())
}

func TestMutation_CancelledCaller(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1)
	transport.results = make(chan error)
	ctx, cancel := context.WithCancel(context.Background())

	done := async(func() error { return s.Add(ctx, p2) })
	require.Eventually(t, func() bool { return transport.callCount() == 2 }, time.Second, time.Millisecond)
	cancel()
	transport.results <- models.Persistence("cannot store favourite places", nil)

	err := wait(t, done)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reporter.Messages(), "nobody is left to show the error to")
	assert.Equal(t, []string{"p1"}, s.Places().Places().IDs(), "other views must not keep the unsaved place")
}

func TestMutation_CancelledCallerSucceeds(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1)
	transport.results = make(chan error)
	ctx, cancel := context.WithCancel(context.Background())

	done := async(func() error { return s.Remove(ctx, p1) })
	require.Eventually(t, func() bool { return transport.callCount() == 2 }, time.Second, time.Millisecond)
	cancel()
	transport.results <- nil

	assert.NoError(t, wait(t, done))
	assert.Empty(t, reporter.Messages())
	assert.Empty(t, s.Places().Places())
}

func TestLoad_CancelledCaller(t *testing.T) {
	s, transport, reporter := newTestSynchronizer(t, p1)
	transport.results = make(chan error)
	ctx, cancel := context.WithCancel(context.Background())

	done := async(func() error {
		_, err := s.Load(ctx)
		return err
	})
	require.Eventually(t, func() bool { return transport.callCount() == 2 }, time.Second, time.Millisecond)
	assert.True(t, s.Fetching())
	transport.mutex.Lock()
	transport.favourites = models.FavouritePlaces{p3}
	transport.mutex.Unlock()
	cancel()
	transport.results <- nil

	assert.ErrorIs(t, wait(t, done), context.Canceled)
	assert.Equal(t, []string{"p1"}, s.Places().Places().IDs())
	assert.Empty(t, reporter.Messages())
	assert.False(t, s.Fetching())
}

func TestMutations_RunOneAtATime(t *testing.T) {
	s, transport, _ := newTestSynchronizer(t)
	transport.results = make(chan error)

	first := async(func() error { return s.Add(context.Background(), p1) })
	require.Eventually(t, func() bool { return transport.callCount() == 1 }, time.Second, time.Millisecond)
	second := async(func() error { return s.Add(context.Background(), p2) })
	assert.Never(t, func() bool { return transport.callCount() > 1 }, 50*time.Millisecond, time.Millisecond)

	// the first rollback must not wipe out the second place
	transport.results <- models.Persistence("cannot store favourite places", nil)
	require.Error(t, wait(t, first))
	transport.results <- nil
	require.NoError(t, wait(t, second))
	assert.Equal(t, []string{"p2"}, s.Places().Places().IDs())
}

func TestMutation_CancelledWhileQueued(t *testing.T) {
	s, transport, _ := newTestSynchronizer(t)
	transport.results = make(chan error)

	first := async(func() error { return s.Add(context.Background(), p1) })
	require.Eventually(t, func() bool { return transport.callCount() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Remove(ctx, p1), context.Canceled)

	transport.results <- nil
	require.NoError(t, wait(t, first))
	assert.Equal(t, []string{"p1"}, s.Places().Places().IDs())
	assert.Equal(t, 1, transport.callCount())
}

func TestNewSynchronizer_NilReporter(t *testing.T) {
	transport := &fakeTransport{err: models.Network("down", nil)}
	s := NewSynchronizer(transport, nil)
	_, err := s.Load(context.Background())
	assert.Equal(t, models.KindNetwork, models.KindOf(err))
}
