package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTrailingData is returned when a reply carries anything after its JSON
// value, such as a closing markdown fence or explanatory prose.
var ErrTrailingData = errors.New("unexpected data after json value")

// DecodeStrict unmarshals content into v, rejecting unknown fields, markdown
// fences and anything trailing the first JSON value.
func DecodeStrict(content string, v any) error {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}
