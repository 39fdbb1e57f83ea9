package catalog

import (
	"encoding/json"
	"os"
)

// WriteCheckpoint stores extracted courses so loading can run as a separate pass.
func WriteCheckpoint(path string, courses []Course) error {
	if courses == nil {
		courses = []Course{}
	}
	encoded, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

func ReadCheckpoint(path string) ([]Course, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var courses []Course
	if err := json.Unmarshal(encoded, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
