package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryAttachments uploads membership files to a Cloudinary folder.
type CloudinaryAttachments struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryAttachments(cloudName, apiKey, apiSecret, folder string) (*CloudinaryAttachments, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryAttachments{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func (c *CloudinaryAttachments) publicID(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if c.folder == "" {
		return base
	}
	return c.folder + "/" + base
}

func (c *CloudinaryAttachments) Put(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	result, err := c.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		PublicID:     c.publicID(name),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

func (c *CloudinaryAttachments) Delete(ctx context.Context, name string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: c.publicID(name)})
	return err
}

func (c *CloudinaryAttachments) URL(ref string) string {
	return ref
}
