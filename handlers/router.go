package handlers

import (
	"favplaces/logger"
	"favplaces/utils"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const FeedPath = "/user-places/feed"

type RouterOptions struct {
	Places *PlacesHandler
	Feed   *Feed
	Images *ImagesHandler
	Debug  bool
}

// NewRouter wires middlewares and all routes
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies([]string{})
	router.Use(gin.Recovery(), utils.RequestID, logger.GinMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPut, http.MethodDelete},
		AllowHeaders:    []string{"Content-Type"},
		ExposeHeaders:   []string{"Content-Length", utils.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	// The feed hijacks the connection, it cannot go through gzip
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{FeedPath})))
	if opts.Debug {
		router.Use(utils.ErrorLogMiddleware)
	}
	noCache := (&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()

	router.GET("/places", noCache, opts.Places.PlaceList)
	router.GET("/user-places", noCache, opts.Places.UserPlaceList)
	router.PUT("/user-places", noCache, opts.Places.UserPlaceAdd)
	router.DELETE("/user-places/:id", noCache, opts.Places.UserPlaceRemove)
	if opts.Feed != nil {
		router.GET(FeedPath, opts.Feed.WebSocket)
	}
	if opts.Images != nil {
		router.GET("/thumbs/:name", (&utils.CacheRouter{CacheTime: 86400}).Handler(), opts.Images.Thumb)
		router.NoRoute(opts.Images.Static)
	} else {
		router.NoRoute(NotFound)
	}
	return router
}
