package main

import (
	"favplaces/config"
	"favplaces/handlers"
	"favplaces/logger"
	"favplaces/storage"
	"favplaces/store"
	"strings"

	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init(config.LOG_LEVEL, config.LOG_PRETTY)
	log := logger.Get()
	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := storage.Init(); err != nil {
		log.Fatal().Err(err).Str("type", config.STORAGE_TYPE).Msg("Cannot initialise storage")
	}
	documents := storage.GetDefaultStorage()

	catalog := store.NewCatalog(documents, config.CATALOG_DOCUMENT, config.CATALOG_CACHE_TTL)
	favourites := store.NewFavourites(documents, config.FAVOURITES_DOCUMENT, catalog)
	images := storage.NewDiskStorage(&storage.Bucket{Name: "images", Path: config.IMAGES_DIR})

	router := handlers.NewRouter(handlers.RouterOptions{
		Places: &handlers.PlacesHandler{
			Catalog:    catalog,
			Favourites: favourites,
			Delay:      config.PLACES_DELAY,
		},
		Feed:   handlers.NewFeed(favourites),
		Images: handlers.NewImagesHandler(images),
		Debug:  config.DEBUG_MODE,
	})

	var err error
	if config.TLS_DOMAINS != "" {
		log.Info().Str("domains", config.TLS_DOMAINS).Msg("Serving with TLS")
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		log.Info().Str("address", config.BIND_ADDRESS).Str("storage", config.STORAGE_TYPE).Msg("Serving")
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatal().Err(err).Msg("Server stopped")
}
