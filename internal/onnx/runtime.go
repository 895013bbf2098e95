package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	onnxruntime "github.com/yalue/onnxruntime_go"
)

// EnvLibraryPath overrides the ONNX Runtime shared library location.
const EnvLibraryPath = "FACEFOCUS_ONNX_LIB"

// libraryName returns the platform-specific shared library filename.
func libraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// findLibraryPath locates the ONNX Runtime shared library. Search order:
// explicit env override, then <project root>/onnxruntime/lib.
func findLibraryPath() (string, error) {
	if p := os.Getenv(EnvLibraryPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("ONNX Runtime library not found at %s (from %s): %w", p, EnvLibraryPath, err)
		}
		return p, nil
	}

	root, err := findProjectRoot()
	if err != nil {
		return "", err
	}
	libName, err := libraryName()
	if err != nil {
		return "", err
	}
	libPath := filepath.Join(root, "onnxruntime", "lib", libName)
	if _, err := os.Stat(libPath); err != nil {
		return "", fmt.Errorf("ONNX Runtime library not found at %s: %w", libPath, err)
	}
	return libPath, nil
}

// findProjectRoot walks up from the working directory looking for go.mod or
// an onnxruntime directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "onnxruntime")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find project root with onnxruntime directory")
		}
		dir = parent
	}
}

// SetLibraryPath points onnxruntime_go at the shared library. Calling it
// after the environment has been initialized is a no-op.
func SetLibraryPath() error {
	if onnxruntime.IsInitialized() {
		return nil
	}
	libPath, err := findLibraryPath()
	if err != nil {
		return err
	}
	onnxruntime.SetSharedLibraryPath(libPath)
	return nil
}
