package api

import (
	"errors"
	"net/http"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// writeError maps domain errors onto status codes. Unknown errors are
// logged and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	var inUse *media.InUseError
	switch {
	case errors.As(err, &inUse):
		c.JSON(http.StatusConflict, gin.H{"error": inUse.Error(), "used_by": inUse.UsedBy})
	case errors.Is(err, media.ErrInvalidKey), errors.Is(err, media.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrNotFound), errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, content.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.Is(err, media.ErrMisconfigured):
		_ = c.Error(err)
		log.Error().Err(err).Msg("Media storage misconfigured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Media storage is misconfigured"})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
