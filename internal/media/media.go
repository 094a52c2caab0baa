// Package media uploads and deletes assets on the hosted image service.
package media

import (
	"context"
	"io"
)

// Asset identifies a stored remote image.
type Asset struct {
	PublicID string
	URL      string
}

// Uploader is the minimal surface the services need from the image host.
// Handlers and services depend on this interface so tests can substitute
// a fake.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}
