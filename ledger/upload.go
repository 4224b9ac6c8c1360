package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/yourusername/insure-dao/models"
)

// UploadImage stores claim evidence off-ledger and returns its SHA-256 hex
// digest with a URL for the stored copy. Ledger state is not touched.
func (s *Service) UploadImage(ctx context.Context, data []byte, contentType string) (models.ImageUpload, error) {
	start := time.Now()
	if err := s.delay(ctx); err != nil {
		s.observe("upload_image", "error", start)
		return models.ImageUpload{}, err
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	url, err := s.blobs.Put(ctx, hash, contentType, data)
	if err != nil {
		s.observe("upload_image", "error", start)
		return models.ImageUpload{}, fmt.Errorf("failed to store upload: %w", err)
	}
	s.observe("upload_image", "ok", start)
	return models.ImageUpload{Hash: hash, URL: url}, nil
}
