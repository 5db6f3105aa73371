package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// TransactionCursor is the position of the last transaction on a page. Pages
// are ordered by transaction date, creation time and id, all descending.
type TransactionCursor struct {
	Date      time.Time
	CreatedAt time.Time
	ID        string
}

// EncodeTransactionCursor creates an opaque token from a cursor.
func EncodeTransactionCursor(c TransactionCursor) string {
	return EncodeMultiFieldToken(c.Date.UTC().Format(timeFormat), c.CreatedAt.UTC().Format(timeFormat), c.ID)
}

// DecodeTransactionCursor parses a token produced by EncodeTransactionCursor.
func DecodeTransactionCursor(token string) (TransactionCursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return TransactionCursor{}, err
	}
	if len(parts) != 3 || parts[2] == "" {
		return TransactionCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return TransactionCursor{}, fmt.Errorf("invalid pagination token format (transaction date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return TransactionCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	return TransactionCursor{Date: date, CreatedAt: createdAt, ID: parts[2]}, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}
