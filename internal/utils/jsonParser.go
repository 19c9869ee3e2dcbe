package utils

import (
	"encoding/json"
	"fmt"
)

func SerializeJSON(data any) ([]byte, error) {
	value, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JSON: %w", err)
	}
	return value, nil
}
