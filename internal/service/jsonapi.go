package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"webapi-relay/internal/stream"
)

// ErrNotObject is returned when the document cannot carry a "test" field.
var ErrNotObject = errors.New("JSON document is not an object")

// MutatedField and MutatedValue are written into every echoed document.
const (
	MutatedField = "test"
	MutatedValue = "test_value"
)

// listItems is the fixed payload of GET /json_api.
var listItems = []string{"foo", "bar"}

// MutateDocument parses body as exactly one JSON value, sets "test" to
// "test_value" on it and serializes the result. A null document becomes a
// new object; arrays and scalars are rejected. Numbers are kept verbatim.
func MutateDocument(body []byte) ([]byte, error) {
	text, err := stream.Text(body)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse JSON: trailing data after document")
	}

	var obj map[string]any
	switch v := doc.(type) {
	case map[string]any:
		obj = v
	case nil:
		obj = make(map[string]any, 1)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, doc)
	}
	obj[MutatedField] = MutatedValue

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return nil, fmt.Errorf("serialize JSON: %w", err)
	}
	return bytes.TrimSuffix(out.Bytes(), []byte("\n")), nil
}

// ListDocument serializes the fixed list with marshal.
func ListDocument(marshal func(any) ([]byte, error)) ([]byte, error) {
	return marshal(listItems)
}
