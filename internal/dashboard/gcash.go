package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/collection"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

const (
	GcashUpdatedNotice = "Gcash entry updated successfully!"
	GcashAddedNotice   = "Gcash entry added successfully!"
	NotImageMessage    = "Please select a valid image file."
)

var (
	// ErrNotImage fails the client-side check before upload; show
	// NotImageMessage.
	ErrNotImage = errors.New("dashboard: not an image file")
	// ErrNoUpload is returned by Add before an image finished uploading.
	ErrNoUpload = errors.New("dashboard: upload an image first")
)

// GcashBoard manages the QR codes customers pay to.
type GcashBoard struct {
	api *Client

	mu       sync.Mutex
	entries  []models.GcashEntry
	uploaded string
}

func NewGcashBoard(api *Client) *GcashBoard { return &GcashBoard{api: api} }

func (g *GcashBoard) Load(ctx context.Context) error {
	entries, err := g.api.GcashEntries(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("dashboard: fetch gcash entries", "error", err)
		return err
	}
	g.mu.Lock()
	g.entries = entries
	g.mu.Unlock()
	return nil
}

func (g *GcashBoard) Entries() []models.GcashEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.GcashEntry(nil), g.entries...)
}

// IsImage sniffs data the way a browser would.
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

// Upload checks the file is an image, sends it and remembers the URL for
// the next Add or Replace.
func (g *GcashBoard) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if !IsImage(data) {
		logger.WithCtx(ctx).Warn("dashboard: rejected non-image upload", "filename", filename)
		return "", ErrNotImage
	}
	url, err := g.api.UploadQR(ctx, filename, data)
	if err != nil {
		logger.WithCtx(ctx).Error("dashboard: upload qr", "filename", filename, "error", err)
		return "", err
	}
	g.mu.Lock()
	g.uploaded = url
	g.mu.Unlock()
	return url, nil
}

// Uploaded is the URL of the last completed upload, if any.
func (g *GcashBoard) Uploaded() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uploaded
}

// Add creates an entry from the last upload.
func (g *GcashBoard) Add(ctx context.Context) (string, error) {
	url := g.Uploaded()
	if url == "" {
		return "", ErrNoUpload
	}
	e, err := g.api.CreateGcash(ctx, []string{url})
	if err != nil {
		logger.WithCtx(ctx).Error("dashboard: add gcash entry", "error", err)
		return "", err
	}
	g.mu.Lock()
	g.entries = append(g.entries, e)
	g.uploaded = ""
	g.mu.Unlock()
	return GcashAddedNotice, nil
}

// Replace points entry id at url and swaps it in the local list.
func (g *GcashBoard) Replace(ctx context.Context, id, url string) (string, error) {
	e, err := g.api.ReplaceGcash(ctx, id, url)
	if err != nil {
		logger.WithCtx(ctx).Error("dashboard: replace gcash entry", "id", id, "error", err)
		return "", err
	}
	g.mu.Lock()
	if i := collection.IndexOf(g.entries, func(x models.GcashEntry) bool { return x.ID.Hex() == id }); i >= 0 {
		g.entries[i] = e
	}
	if g.uploaded == url {
		g.uploaded = ""
	}
	g.mu.Unlock()
	return GcashUpdatedNotice, nil
}
