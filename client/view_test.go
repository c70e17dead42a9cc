package client

import (
	"context"
	"testing"
	"time"

	"favplaces/models"

	"github.com/stretchr/testify/assert"
)

func TestCell_Subscribe(t *testing.T) {
	c := newCell()
	var first, second [][]string
	unsubscribe := c.Subscribe(func(places models.FavouritePlaces) { first = append(first, places.IDs()) })
	c.Subscribe(func(places models.FavouritePlaces) { second = append(second, places.IDs()) })

	c.set(models.FavouritePlaces{p1})
	unsubscribe()
	unsubscribe()
	c.set(models.FavouritePlaces{p1, p2})

	assert.Equal(t, [][]string{{"p1"}}, first)
	assert.Equal(t, [][]string{{"p1"}, {"p1", "p2"}}, second)
	assert.Equal(t, 1, c.observerCount())
}

func TestCell_PlacesIsACopy(t *testing.T) {
	c := newCell()
	c.set(models.FavouritePlaces{p1})
	places := c.Places()
	places[0].Title = "changed"
	_ = append(places, p2)
	assert.Equal(t, "Forest Waterfall", c.Places()[0].Title)
	assert.Len(t, c.Places(), 1)
}

func TestCell_Bind(t *testing.T) {
	c := newCell()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	c.Bind(ctx, func(models.FavouritePlaces) { calls++ })

	c.set(models.FavouritePlaces{p1})
	cancel()
	assert.Eventually(t, func() bool { return c.observerCount() == 0 }, time.Second, time.Millisecond)
	c.set(models.FavouritePlaces{})
	assert.Equal(t, 1, calls)
}

func TestErrorSlot(t *testing.T) {
	var changes []string
	slot := NewErrorSlot(func(message string) { changes = append(changes, message) })
	assert.Empty(t, slot.Message())

	slot.Report(AddFailedMessage)
	slot.Report(RemoveFailedMessage)
	assert.Equal(t, RemoveFailedMessage, slot.Message(), "newest message wins")

	slot.Report(RemoveFailedMessage)
	slot.Clear()
	assert.Empty(t, slot.Message())
	assert.Equal(t, []string{AddFailedMessage, RemoveFailedMessage, ""}, changes)

	var _ Reporter = slot
	var got string
	ReporterFunc(func(message string) { got = message }).Report(LoadFailedMessage)
	assert.Equal(t, LoadFailedMessage, got)
}
