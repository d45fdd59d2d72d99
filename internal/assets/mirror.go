package assets

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

// Mirror keeps a remote copy of uploaded images.
type Mirror interface {
	Upload(ctx context.Context, path, publicID string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// Cloudinary mirrors uploads to a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary connects using a cloudinary:// URL.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary init")
	}
	return &Cloudinary{cld: cld}, nil
}

// Upload sends the file at path and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, path, publicID string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		PublicID:  publicID,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", errors.Wrap(err, "cloudinary upload")
	}
	if res.Error.Message != "" {
		return "", errors.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// Destroy deletes the remote copy.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return errors.Wrap(err, "cloudinary destroy")
	}
	if res.Error.Message != "" {
		return errors.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
