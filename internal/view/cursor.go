package view

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Cursor identifies one element of a Connection.
type Cursor struct {
	Key   string
	Value string
}

const indexCursorKey = "index"

// EncodeCursor serialises the cursor to an opaque token.
func EncodeCursor(c *Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s", c.Key, c.Value)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses a token produced by EncodeCursor.
func decodeCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	return &Cursor{Key: parts[0], Value: parts[1]}, nil
}

// cursorFor keys on the element's cursor field when present, its position otherwise.
func cursorFor(elem Record, key string, index int) *Cursor {
	if key != "" {
		if v, ok := elem[key]; ok && v != nil {
			return &Cursor{Key: key, Value: fmt.Sprint(v)}
		}
	}
	return &Cursor{Key: indexCursorKey, Value: strconv.Itoa(index)}
}
