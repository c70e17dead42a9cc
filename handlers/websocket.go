package handlers

import (
	"encoding/json"
	"favplaces/logger"
	"favplaces/models"
	"favplaces/store"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

const (
	feedSendBuffer   = 8
	feedWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same policy as the CORS middleware: any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

type feedClient struct {
	send chan []byte
}

// Feed pushes the favourites list to websocket clients every time it changes
type Feed struct {
	favourites *store.Favourites
	clients    cmap.ConcurrentMap[string, *feedClient]
	log        zerolog.Logger
}

func NewFeed(favourites *store.Favourites) *Feed {
	f := &Feed{
		favourites: favourites,
		clients:    cmap.New[*feedClient](),
		log:        logger.Component("feed"),
	}
	favourites.OnChange(f.Broadcast)
	return f
}

func (f *Feed) Count() int {
	return f.clients.Count()
}

// Broadcast queues the list for every connected client, slow clients miss updates rather than block the writer
func (f *Feed) Broadcast(places models.FavouritePlaces) {
	data, err := json.Marshal(UserPlacesResponse{UserPlaces: places})
	if err != nil {
		f.log.Error().Err(err).Msg("Cannot encode feed message")
		return
	}
	f.clients.IterCb(func(id string, client *feedClient) {
		select {
		case client.send <- data:
		default:
			f.log.Warn().Str("client", id).Msg("Feed client too slow, update dropped")
		}
	})
}

func (f *Feed) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("upgrade")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	client := &feedClient{send: make(chan []byte, feedSendBuffer)}
	// Start with the current list, then follow changes. Both happen under the store lock so no change falls in between.
	err = f.favourites.Watch(c.Request.Context(), func(places models.FavouritePlaces) {
		data, _ := json.Marshal(UserPlacesResponse{UserPlaces: places})
		client.send <- data
		f.clients.Set(id, client)
	})
	if err != nil {
		f.log.Warn().Err(err).Str("client", id).Msg("Feed client connected without the current list")
		f.clients.Set(id, client)
	}
	defer f.clients.Remove(id)
	f.log.Debug().Str("client", id).Int("clients", f.Count()).Msg("Feed client connected")

	// Main read cycle, only used to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(message) == "ping" {
				select {
				case client.send <- []byte("pong"):
				default:
				}
			}
		}
	}()

	for {
		select {
		case data := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.log.Debug().Err(err).Str("client", id).Msg("write err")
				return
			}
		case <-closed:
			f.log.Debug().Str("client", id).Msg("Feed client disconnected")
			return
		}
	}
}
