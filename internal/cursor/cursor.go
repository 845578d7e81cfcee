// Package cursor encodes and decodes connection cursors. Cursors are opaque
// base64-encoded JSON payloads carrying the record's unique identifier.
// They are descriptive handles for the exact record at an edge, never an
// input to offset computation.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type payloadV1 struct {
	Version  int    `json:"v"`
	TypeName string `json:"t"`
	ID       string `json:"id"`
}

// Encode builds an opaque cursor from a type name and record identifier.
func Encode(typeName, id string) string {
	payload := payloadV1{
		Version:  1,
		TypeName: typeName,
		ID:       id,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses a base64-encoded JSON cursor and returns the type name and
// record identifier it carries.
func Decode(raw string) (typeName, id string, err error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid cursor: %w", err)
	}
	var payload payloadV1
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", "", fmt.Errorf("invalid cursor format: expected v1 cursor")
	}
	if payload.Version != 1 {
		return "", "", fmt.Errorf("invalid cursor format: expected v1 cursor")
	}
	if payload.TypeName == "" || payload.ID == "" {
		return "", "", fmt.Errorf("invalid cursor: missing type or identifier")
	}
	return payload.TypeName, payload.ID, nil
}

// Validate confirms the cursor was issued for the expected record type.
func Validate(expectedType, actualType string) error {
	if actualType != expectedType {
		return fmt.Errorf("cursor type mismatch: expected %s, got %s", expectedType, actualType)
	}
	return nil
}
