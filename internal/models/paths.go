package models

import (
	"errors"
	"os"
	"path/filepath"
)

// Model filename constants to avoid typos and ensure consistency.
const (
	// FaceDetector is the SSD face detection model exported to ONNX.
	FaceDetector = "face_detector.onnx"

	// AnchorSpecFile is the optional anchor geometry override shipped
	// alongside the model.
	AnchorSpecFile = "anchors.yaml"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "FACEFOCUS_MODELS_DIR"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// GetModelsDir returns the models directory path from various sources.
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable,
// 3. Project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// GetFaceDetectorModelPath returns the path to the face detection model.
func GetFaceDetectorModelPath(modelsDir string) string {
	return filepath.Join(GetModelsDir(modelsDir), FaceDetector)
}

// GetAnchorSpecPath returns the path to the anchor spec override if it
// exists next to the model, or an empty string when absent.
func GetAnchorSpecPath(modelsDir string) string {
	p := filepath.Join(GetModelsDir(modelsDir), AnchorSpecFile)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
