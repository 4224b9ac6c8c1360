package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/blobstore"
)

const MaxUploadBytes = 10 << 20

func (h *LedgerHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	up, err := h.ledger.UploadImage(c.Request.Context(), data, contentType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, up)
}

// GetUpload serves blobs held by the in-memory store.
func (h *LedgerHandler) GetUpload(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
		return
	}
	blob, err := h.uploads.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.Header("X-Content-Sha256", blob.Hash)
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
