package controllers

import (
	"errors"
	"net/http"

	"civic-tracker-be/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UploadController struct {
	photos storage.PhotoStore
}

func NewUploadController(photos storage.PhotoStore) *UploadController {
	return &UploadController{photos: photos}
}

// ServeUpload handles GET /uploads/:filename
func (uc *UploadController) ServeUpload(c *gin.Context) {
	body, info, err := uc.photos.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) || errors.Is(err, storage.ErrInvalidFilename) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Error().Err(err).Msg("Error opening photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file"})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, body, nil)
}
