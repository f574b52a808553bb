package services

import (
	"context"
	"fmt"

	"pasr-server/models"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ImageStore interface {
	Upload(ctx context.Context, image string, publicID string) (models.Image, error)
	Destroy(ctx context.Context, filename string) error
}

// ImagePublicID names an upload after its listing, e.g. "sharma-caterings-V1StGXR8".
func ImagePublicID(name string) (string, error) {
	id, err := gonanoid.New(8)
	if err != nil {
		return "", err
	}
	base := slug.Make(name)
	if base == "" {
		base = "listing"
	}
	return base + "-" + id, nil
}

// UploadImages uploads base64 images for a listing. On failure the images
// already uploaded in this call are destroyed again.
func UploadImages(ctx context.Context, store ImageStore, name string, images []string) ([]models.Image, error) {
	out := make([]models.Image, 0, len(images))
	for _, src := range images {
		if src == "" {
			continue
		}
		publicID, err := ImagePublicID(name)
		if err != nil {
			return nil, err
		}
		img, err := store.Upload(ctx, src, publicID)
		if err != nil {
			destroyImages(ctx, store, out)
			return nil, fmt.Errorf("upload image for %q: %w", name, err)
		}
		out = append(out, img)
	}
	return out, nil
}
