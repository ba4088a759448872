// Package codec serializes one user's application-state document to and
// from its persisted text representation.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bganesh/bprogress/internal/models"
)

// ErrDecode wraps any failure to decode a persisted document. Callers
// must fall back to a default empty document instead of propagating it.
var ErrDecode = errors.New("document decode failed")

// Encode serializes a document to its persisted text form.
func Encode(doc *models.Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

// EncodeIndent serializes a document pretty-printed, for export dumps.
func EncodeIndent(doc *models.Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// Decode parses a persisted document. Missing fields decode to empty
// collections: partial fragments are expected during rollout and must
// not fault. Malformed input returns an error wrapping ErrDecode.
func Decode(text string) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &doc, nil
}
