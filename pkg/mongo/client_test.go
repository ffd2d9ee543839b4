package mongo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamarena/quotakit/pkg/mongo"
)

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := mongo.New(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)

	_, err = mongo.NewWithDatabase(context.Background(), mongo.Config{Database: "x"})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
}
