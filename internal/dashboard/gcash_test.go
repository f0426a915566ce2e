package dashboard_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/internal/dashboard"
	"github.com/shashiranjanraj/laundry/pkg/testkit"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestGcashBoard_RejectsNonImage(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.Install(t)

	g := dashboard.NewGcashBoard(dashboard.NewClient(base, ""))
	_, err := g.Upload(context.Background(), "notes.txt", []byte("plain text"))
	assert.ErrorIs(t, err, dashboard.ErrNotImage)
	assert.Empty(t, mt.Calls())
}

func TestGcashBoard_AddNeedsUpload(t *testing.T) {
	g := dashboard.NewGcashBoard(dashboard.NewClient(base, ""))
	_, err := g.Add(context.Background())
	assert.ErrorIs(t, err, dashboard.ErrNoUpload)
}

func TestGcashBoard_UploadThenAdd(t *testing.T) {
	id := primitive.NewObjectID()
	mt := testkit.NewMockTransport().
		On("POST", "/api/gcash/upload", func(r *http.Request, _ []byte) (int, interface{}) {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				return 400, nil
			}
			return 200, map[string]string{"url": "http://cdn/gcash/qr.png"}
		}).
		JSON("POST", "/api/gcash/gcash", 201, models.GcashEntry{ID: id, QRImage: []string{"http://cdn/gcash/qr.png"}})
	mt.Install(t)

	g := dashboard.NewGcashBoard(dashboard.NewClient(base, ""))
	url, err := g.Upload(context.Background(), "qr.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/gcash/qr.png", url)
	assert.Equal(t, url, g.Uploaded())

	_, err = g.Add(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"QRImage":["http://cdn/gcash/qr.png"]}`, string(mt.Calls()[1].Body))
	require.Len(t, g.Entries(), 1)
	assert.Equal(t, id, g.Entries()[0].ID)
	assert.Empty(t, g.Uploaded())
}

func TestGcashBoard_Replace(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	mt := testkit.NewMockTransport().
		JSON("GET", "/api/gcash/gcashV", 200, []models.GcashEntry{
			{ID: a, QRImage: []string{"http://cdn/a.png"}},
			{ID: b, QRImage: []string{"http://cdn/b.png"}},
		}).
		JSON("PUT", "/api/gcash/gcashU/"+b.Hex(), 200, models.GcashEntry{ID: b, QRImage: []string{"http://cdn/new.png"}})
	mt.Install(t)

	g := dashboard.NewGcashBoard(dashboard.NewClient(base, ""))
	require.NoError(t, g.Load(context.Background()))

	notice, err := g.Replace(context.Background(), b.Hex(), "http://cdn/new.png")
	require.NoError(t, err)
	assert.Equal(t, "Gcash entry updated successfully!", notice)

	entries := g.Entries()
	assert.Equal(t, []string{"http://cdn/a.png"}, entries[0].QRImage)
	assert.Equal(t, []string{"http://cdn/new.png"}, entries[1].QRImage)
	testkit.AssertNoUnusedMocks(t, mt)
}

func TestGcashBoard_ReplaceUnknown(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	testkit.NewMockTransport().JSON("PUT", "/api/gcash/gcashU/"+id, 404,
		map[string]interface{}{"status": 404, "message": "Gcash entry not found"}).Install(t)

	g := dashboard.NewGcashBoard(dashboard.NewClient(base, ""))
	_, err := g.Replace(context.Background(), id, "http://cdn/x.png")
	require.Error(t, err)
}
