package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ServeMedia handles GET /api/media/*key.
func (h *Handler) ServeMedia(c *gin.Context) {
	dl, err := h.media.Open(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer dl.Body.Close()

	headers := map[string]string{"Cache-Control": "public, max-age=3600"}
	if dl.NoIndex {
		headers["X-Robots-Tag"] = "noindex"
	}
	contentType := dl.Object.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, dl.Object.Size, contentType, dl.Body, headers)
}

// ListMedia handles GET /api/admin/media.
func (h *Handler) ListMedia(c *gin.Context) {
	files, err := h.media.Files(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// MediaUsage handles GET /api/admin/media/usage.
func (h *Handler) MediaUsage(c *gin.Context) {
	idx, err := h.media.Usage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": idx})
}

// UploadMedia handles POST /api/admin/media with a multipart "file" and
// an optional "folder".
func (h *Handler) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds " + strconv.FormatInt(h.maxUpload>>20, 10) + " MB"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	file, err := h.media.Upload(c.Request.Context(), media.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Folder:      c.PostForm("folder"),
		Data:        data,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

type noIndexRequest struct {
	Key     string `json:"key" binding:"required"`
	NoIndex *bool  `json:"noindex" binding:"required"`
}

// SetMediaNoIndex handles PUT /api/admin/media/noindex.
func (h *Handler) SetMediaNoIndex(c *gin.Context) {
	var req noIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.media.SetNoIndex(c.Request.Context(), req.Key, *req.NoIndex); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": h.media.Resolver().Normalize(req.Key), "noindex": *req.NoIndex})
}

// DeleteMedia handles DELETE /api/admin/media?key=.
func (h *Handler) DeleteMedia(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if err := h.media.Delete(c.Request.Context(), key); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("key", key).Str("by", access.Email(c)).Msg("Media deleted from dashboard")
	c.Status(http.StatusNoContent)
}
