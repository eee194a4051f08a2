package emotion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxModelFileSize bounds model files to keep a mistyped path from pulling
// an arbitrary blob into memory.
const maxModelFileSize = 4 * 1024 * 1024 // 4MB

// LoadModelFile reads and validates a JSON-encoded ModelParameters file.
// The file must have a .json extension. The returned model has passed
// Validate, so it can be handed straight to NewClassifier.
func LoadModelFile(path string) (*ModelParameters, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("model file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat model file: %w", err)
	}
	if fileInfo.Size() > maxModelFileSize {
		return nil, fmt.Errorf("model file too large: %d bytes (max %d)", fileInfo.Size(), maxModelFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var model ModelParameters
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %q: %w", model.ModelID, err)
	}

	return &model, nil
}
