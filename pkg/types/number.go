package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NumberOrString accepts a JSON number, a numeric string or null and keeps the
// raw text, so parsing (and its error) happens where the value is used.
// Null and absent both decode to the empty string.
type NumberOrString string

func (n *NumberOrString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*n = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = NumberOrString(strings.TrimSpace(s))
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return fmt.Errorf("expected number or string, got %s", trimmed)
		}
		*n = NumberOrString(num.String())
		return nil
	}
}

func (n NumberOrString) String() string {
	return string(n)
}
