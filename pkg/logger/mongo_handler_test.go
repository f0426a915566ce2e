package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeInserter struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (f *fakeInserter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandler_FlushesOnClose(t *testing.T) {
	col := &fakeInserter{}
	h := newMongoHandler(col, slog.LevelInfo)

	log := slog.New(h).With("request_id", "rid-1").WithGroup("order")
	log.Info("role changed", "role", "admin")
	log.Debug("ignored")
	h.Close()

	require.Len(t, col.docs, 1)
	doc := col.docs[0]
	assert.Equal(t, "role changed", doc.Msg)
	assert.Equal(t, "rid-1", doc.RequestID)
	assert.Equal(t, "admin", doc.Attrs["order.role"])
}

func TestMongoHandler_CloseTwice(t *testing.T) {
	h := newMongoHandler(&fakeInserter{}, nil)
	h.Close()
	assert.NotPanics(t, h.Close)
}

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, Base(), WithCtx(context.Background()))

	var buf bytes.Buffer
	tagged := New(&buf, "local").With("request_id", "abc")
	ctx := InjectLogger(context.Background(), tagged)
	WithCtx(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
}
