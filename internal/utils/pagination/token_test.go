package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTransactionCursor(t *testing.T) {
	cursor := TransactionCursor{
		Date:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 4, 1, 9, 15, 30, 123456000, time.UTC),
		ID:        "5b0e7c1e-6f43-4d7e-9a51-1f2d3c4b5a69",
	}

	token := EncodeTransactionCursor(cursor)
	assert.NotEmpty(t, token)

	decoded, err := DecodeTransactionCursor(token)
	require.NoError(t, err)
	assert.True(t, cursor.Date.Equal(decoded.Date))
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestEncodeTransactionCursorNormalisesZone(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	cursor := TransactionCursor{
		Date:      time.Date(2024, 3, 31, 3, 0, 0, 0, nairobi),
		CreatedAt: time.Date(2024, 3, 31, 12, 0, 0, 0, nairobi),
		ID:        "txn-1",
	}

	decoded, err := DecodeTransactionCursor(EncodeTransactionCursor(cursor))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, decoded.Date.Location())
	assert.True(t, cursor.Date.Equal(decoded.Date))
}

func TestDecodeTransactionCursorErrors(t *testing.T) {
	_, err := DecodeTransactionCursor("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeTransactionCursor(base64.URLEncoding.EncodeToString([]byte("2024-03-31T00:00:00Z")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, err = DecodeTransactionCursor(EncodeMultiFieldToken("notadate", "2024-03-31T00:00:00Z", "id"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transaction date parse")

	_, err = DecodeTransactionCursor(EncodeMultiFieldToken("2024-03-31T00:00:00Z", "later", "id"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")

	_, err = DecodeTransactionCursor(EncodeMultiFieldToken("2024-03-31T00:00:00Z", "2024-03-31T00:00:00Z", ""))
	assert.Error(t, err)
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fields)
}
