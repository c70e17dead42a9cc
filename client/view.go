package client

import (
	"context"
	"favplaces/models"
	"sync"
)

type ObserverFunc func(places models.FavouritePlaces)

// View is the read-only side of the favourites cache. Only the Synchronizer writes to it.
type View interface {
	Places() models.FavouritePlaces
	// Subscribe calls fn with every new list until unsubscribe is called
	Subscribe(fn ObserverFunc) (unsubscribe func())
	// Bind subscribes fn for as long as ctx is alive
	Bind(ctx context.Context, fn ObserverFunc)
}

type observer struct {
	id uint64
	fn ObserverFunc
}

// cell owns the cached list. The mutex only protects memory, ordering of writes is the synchroniser's job.
type cell struct {
	mutex     sync.RWMutex
	places    models.FavouritePlaces
	observers []observer
	nextID    uint64
}

func newCell() *cell {
	return &cell{places: models.FavouritePlaces{}}
}

func (c *cell) Places() models.FavouritePlaces {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.places.Clone()
}

func (c *cell) Subscribe(fn ObserverFunc) func() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *cell) Bind(ctx context.Context, fn ObserverFunc) {
	unsubscribe := c.Subscribe(fn)
	context.AfterFunc(ctx, unsubscribe)
}

func (c *cell) unsubscribe(id uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, o := range c.observers {
		if o.id == id {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			return
		}
	}
}

// set replaces the list and notifies observers outside the lock
func (c *cell) set(places models.FavouritePlaces) {
	c.mutex.Lock()
	c.places = places.Clone()
	observers := c.observers
	c.mutex.Unlock()
	for _, o := range observers {
		o.fn(places.Clone())
	}
}

func (c *cell) observerCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.observers)
}
