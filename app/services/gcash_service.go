package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/pkg/event"
	"github.com/shashiranjanraj/laundry/pkg/storage"
)

const gcashDir = "gcash/"

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type CreateGcashInput struct {
	QRImage []string `json:"QRImage" validate:"required,min=1"`
}

type ReplaceGcashInput struct {
	QRImage string `json:"QRImage" validate:"required"`
}

type GcashService struct {
	repo repositories.GcashRepository
	disk func() storage.Disk
}

// NewGcashService stores uploads on disk(); pass storage.Default for the
// configured disk.
func NewGcashService(repo repositories.GcashRepository, disk func() storage.Disk) *GcashService {
	return &GcashService{repo: repo, disk: disk}
}

func (s *GcashService) List(ctx context.Context) ([]models.GcashEntry, error) {
	return s.repo.All(ctx)
}

func (s *GcashService) Create(ctx context.Context, actorID string, images []string) (models.GcashEntry, error) {
	clean := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			clean = append(clean, img)
		}
	}
	if len(clean) == 0 {
		return models.GcashEntry{}, ErrNoImages
	}

	e := models.GcashEntry{QRImage: clean}
	if err := s.repo.Create(ctx, &e); err != nil {
		return models.GcashEntry{}, err
	}
	event.Fire(ctx, models.EventGcashUpdated, models.GcashUpdated{EntryID: e.ID.Hex(), QRImage: e.QRImage, ActorID: actorID, Created: true})
	return e, nil
}

// Replace swaps the image list of entry id for the single url.
func (s *GcashService) Replace(ctx context.Context, actorID, id, url string) (models.GcashEntry, error) {
	oid, err := repositories.ParseID(id)
	if err != nil {
		return models.GcashEntry{}, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return models.GcashEntry{}, ErrNoImages
	}

	e, err := s.repo.ReplaceImages(ctx, oid, []string{url})
	if err != nil {
		return models.GcashEntry{}, err
	}
	event.Fire(ctx, models.EventGcashUpdated, models.GcashUpdated{EntryID: e.ID.Hex(), QRImage: e.QRImage, ActorID: actorID})
	return e, nil
}

// SniffImage reads the head of r and reports its image content type. The
// returned reader replays the consumed bytes.
func SniffImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	ct := http.DetectContentType(head)
	if !strings.HasPrefix(ct, "image/") {
		return "", nil, fmt.Errorf("%w: detected %s", ErrNotImage, ct)
	}
	return ct, io.MultiReader(bytes.NewReader(head), r), nil
}

// Upload stores an image under gcash/ with a generated name and returns its
// public URL.
func (s *GcashService) Upload(ctx context.Context, r io.Reader) (string, error) {
	ct, body, err := SniffImage(r)
	if err != nil {
		return "", err
	}
	ext, ok := imageExt[ct]
	if !ok {
		ext = ".img"
	}
	url, err := s.disk().Put(ctx, gcashDir+uuid.NewString()+ext, body, ct)
	if err != nil {
		return "", fmt.Errorf("gcash: store upload: %w", err)
	}
	return url, nil
}
