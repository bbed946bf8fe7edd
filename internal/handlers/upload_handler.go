package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/01moynul/koodos-golang/internal/storage"
)

// MaxUploadBytes caps media uploads.
const MaxUploadBytes = 10 << 20

// UploadFile handles POST /v1/admin/uploads
// It stores an image in the configured media store and returns its URL.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the request
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 10 MiB"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer src.Close()

	// 2. Sniff the real type; the client header is not trusted
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only images can be uploaded"})
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		respondError(c, err, "Failed to save file")
		return
	}

	// 3. Save under a unique key
	key := storage.NewKey(time.Now().UTC(), file.Filename, contentType)
	url, err := h.Media.Save(c.Request.Context(), key, contentType, src, file.Size)
	if err != nil {
		respondError(c, err, "Failed to save file")
		return
	}

	// 4. Return the public URL
	c.JSON(http.StatusOK, gin.H{"url": url, "contentType": contentType})
}
