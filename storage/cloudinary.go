package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pasr-server/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrImagesDisabled = errors.New("image store is not configured")

// Cloudinary uploads and deletes listing images through the Cloudinary SDK.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary configures the SDK client. baseURL overrides the upload API
// prefix when non-empty.
func NewCloudinary(cloudName, apiKey, apiSecret, folder, baseURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if baseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimRight(baseURL, "/")
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload stores a base64 image, given either as a data URL or as the bare
// payload, under the configured folder.
func (c *Cloudinary) Upload(ctx context.Context, image string, publicID string) (models.Image, error) {
	if image == "" {
		return models.Image{}, errors.New("empty image")
	}
	if !strings.HasPrefix(image, "data:") {
		image = "data:image/jpeg;base64," + image
	}

	finalPublicID := c.qualify(publicID)
	res, err := c.cld.Upload.Upload(ctx, image, uploader.UploadParams{PublicID: finalPublicID})
	if err != nil {
		return models.Image{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return models.Image{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	out := models.Image{URL: res.SecureURL, Filename: res.PublicID}
	if out.URL == "" {
		out.URL = res.URL
	}
	if out.Filename == "" {
		out.Filename = finalPublicID
	}
	if out.URL == "" {
		return models.Image{}, errors.New("cloudinary returned no url")
	}
	return out, nil
}

// Destroy removes an image by its stored filename (the full public id).
// Deleting an image that no longer exists is not an error.
func (c *Cloudinary) Destroy(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: filename})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", filename, res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: result %q", filename, res.Result)
	}
	return nil
}

func (c *Cloudinary) qualify(publicID string) string {
	if c.folder == "" {
		return publicID
	}
	return c.folder + "/" + publicID
}

// DisabledImages stands in when Cloudinary credentials are absent. Uploads
// fail and deletions are no-ops.
type DisabledImages struct{}

func (DisabledImages) Upload(ctx context.Context, image string, publicID string) (models.Image, error) {
	return models.Image{}, ErrImagesDisabled
}

func (DisabledImages) Destroy(ctx context.Context, filename string) error {
	return nil
}
