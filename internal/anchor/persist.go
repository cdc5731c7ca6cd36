package anchor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// anchorFileMode keeps anchor files private to the user, matching how the
// rest of the application writes user data.
const anchorFileMode = 0o600

// Marshal serializes the store as a flat ordered JSON array of numbers in
// ascending document-coordinate order.
func (s *Store) Marshal() ([]byte, error) {
	values := make([]float64, len(s.anchors))
	for i, a := range s.anchors {
		values[i] = float64(a)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize anchors: %w", err)
	}
	return data, nil
}

// Unmarshal replaces the store contents with the anchor list in data.
// On any decode error the store is left untouched, so a malformed file never
// destroys the in-memory anchor set.
func (s *Store) Unmarshal(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse anchor list: %w", err)
	}

	anchors := make([]coords.Coordinate, len(values))
	for i, v := range values {
		anchors[i] = coords.Coordinate(v)
	}
	s.Replace(anchors)
	return nil
}

// Save writes the anchor list to path.
func (s *Store) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, anchorFileMode); err != nil {
		return fmt.Errorf("failed to write anchor file: %w", err)
	}
	return nil
}

// Load replaces the store contents from the anchor file at path.
// A missing or unreadable file leaves the store at its prior state and
// returns the error for the caller to report; the viewer never terminates
// over a bad anchor file.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen anchor file path is intentional
	if err != nil {
		return fmt.Errorf("failed to read anchor file: %w", err)
	}
	return s.Unmarshal(data)
}
