package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDuplicateKeyMapping(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000"}}}

	err := duplicateKey(dup, "op-1")
	assert.True(t, IsDuplicateKeyError(err))
	assert.True(t, IsDuplicateKeyError(fmt.Errorf("save: %w", err)))

	other := errors.New("socket closed")
	assert.Equal(t, other, duplicateKey(other, "op-1"))
	assert.NoError(t, duplicateKey(nil, "op-1"))
}

func TestNotFoundPredicate(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &NotFoundError{Key: "op-1", Message: "not found"})
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsNotFoundError(errors.New("x")))
}
