package model

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationJournalPaginationToken(t *testing.T) {
	token, err := BuildOperationJournalPaginationToken(OperationJournalDocument{Id: "op-7", CreatedAt: 1700})
	require.NoError(t, err)

	p, err := DecodeOperationJournalPaginationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-7", p.Id)
	assert.Equal(t, int64(1700), p.CreatedAt)

	_, err = DecodeOperationJournalPaginationToken("not base64!")
	assert.Error(t, err)

	_, err = DecodeOperationJournalPaginationToken(base64.URLEncoding.EncodeToString([]byte(`{"created_at":1}`)))
	assert.ErrorContains(t, err, "without id")
}
