package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/asheshgoplani/claude-tray/internal/session"
)

// Decode parses the store file content. Empty input is an empty store.
// Callers treat a decode error as an empty store too; the error is only
// returned so it can be logged.
func Decode(data []byte) (session.Sessions, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return session.Sessions{}, nil
	}
	var s session.Sessions
	if err := json.Unmarshal(data, &s); err != nil {
		return session.Sessions{}, fmt.Errorf("decode sessions: %w", err)
	}
	if s == nil {
		// the literal "null"
		s = session.Sessions{}
	}
	return s, nil
}

// Encode serializes the whole store as one JSON object keyed by session id.
// A nil store encodes as {}.
func Encode(s session.Sessions) ([]byte, error) {
	if s == nil {
		s = session.Sessions{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode sessions: %w", err)
	}
	return data, nil
}
