package handlers

import (
	"bytes"
	"errors"
	"favplaces/storage"
	"favplaces/utils"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultThumbSize = 200
	MaxThumbSize     = 1024
)

// ImagesHandler serves the place pictures referenced by Place.Image.Src
type ImagesHandler struct {
	Storage *storage.DiskStorage
	thumbs  *cache.Cache
}

func NewImagesHandler(s *storage.DiskStorage) *ImagesHandler {
	return &ImagesHandler{
		Storage: s,
		thumbs:  cache.New(time.Hour, 10*time.Minute),
	}
}

// cleanName keeps requests inside the images directory
func cleanName(p string) string {
	return path.Clean("/" + p)[1:]
}

// Static serves files from the images directory and falls back to the JSON 404
func (h *ImagesHandler) Static(c *gin.Context) {
	name := cleanName(c.Request.URL.Path)
	if (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) && name != "" && h.Storage.Exists(name) {
		h.Storage.Serve(name, c.Request, c.Writer)
		return
	}
	NotFound(c)
}

// Thumb returns a JPEG no larger than size x size
func (h *ImagesHandler) Thumb(c *gin.Context) {
	name := cleanName(c.Param("name"))
	size := DefaultThumbSize
	if s := c.Query("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > MaxThumbSize {
			c.JSON(http.StatusBadRequest, Response{Error: fmt.Sprintf("size must be between 1 and %d", MaxThumbSize)})
			return
		}
		size = v
	}
	key := name + "@" + strconv.Itoa(size)
	if data, ok := h.thumbs.Get(key); ok {
		c.Data(http.StatusOK, "image/jpeg", data.([]byte))
		return
	}
	original := bytes.Buffer{}
	if _, err := h.Storage.Load(c.Request.Context(), name, &original); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			NotFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, Response{Error: "cannot read image"})
		return
	}
	thumb := bytes.Buffer{}
	if _, err := utils.CreateThumb(uint(size), &original, &thumb); err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Error: "not an image"})
		return
	}
	h.thumbs.SetDefault(key, thumb.Bytes())
	c.Data(http.StatusOK, "image/jpeg", thumb.Bytes())
}
