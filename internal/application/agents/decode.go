package agents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNoJSON is returned when a response holds no JSON array.
var ErrNoJSON = errors.New("no JSON array in response")

// extractJSON returns the JSON array embedded in raw, tolerating markdown
// code fences and surrounding prose.
func extractJSON(raw string) ([]byte, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	return []byte(text[start : end+1]), nil
}

// decodeList decodes a JSON array from raw and validates every item.
func decodeList[T any](v *validator.Validate, raw string) ([]T, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var items []T
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for i := range items {
		if err := v.Struct(&items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = flexNumber(f)
	return nil
}

// optNumber is an optional number. A value that cannot be read as a number
// leaves it unset instead of failing the item.
type optNumber struct {
	value float64
	set   bool
}

func (o *optNumber) UnmarshalJSON(b []byte) error {
	var n flexNumber
	if err := n.UnmarshalJSON(b); err != nil || string(b) == "null" {
		*o = optNumber{}
		return nil
	}
	*o = optNumber{value: float64(n), set: true}
	return nil
}

func (o optNumber) ptr() *float64 {
	if !o.set {
		return nil
	}
	f := o.value
	return &f
}

// flexString accepts a JSON string or a number, keeping numbers in their
// shortest decimal form.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("not a string or number: %s", b)
	}
	*s = flexString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
