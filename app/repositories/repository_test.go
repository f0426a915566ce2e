package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("65a1f0c2e4b0a1b2c3d4e5f6")
	require.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", id.Hex())

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate("op", nil))
	assert.ErrorIs(t, translate("op", mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translate("op", fmt.Errorf("wrapped: %w", mongo.ErrNoDocuments)), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate("op", dup), ErrDuplicate)

	other := errors.New("network")
	err := translate("users: find", other)
	assert.ErrorIs(t, err, other)
	assert.EqualError(t, err, "users: find: network")
}
