package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func resolveOutputDirAbs(outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "output"
	}
	if filepath.IsAbs(outputDir) {
		return filepath.Clean(outputDir), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(filepath.Join(wd, outputDir)), nil
}

// resolveOutputFilePath resolves an output-relative filename composed by
// the Naming Composer (e.g. "1001_東京都_都道府県申告書_2507.pdf") to an
// absolute path under outputDir, preventing path traversal from a
// filename an operator could otherwise influence.
func resolveOutputFilePath(outputDir string, storedPath string) (string, error) {
	outputDirAbs, err := resolveOutputDirAbs(outputDir)
	if err != nil {
		return "", err
	}
	outputDirAbs, err = filepath.Abs(outputDirAbs)
	if err != nil {
		return "", err
	}

	p := strings.TrimSpace(storedPath)
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	p = strings.ReplaceAll(p, "\\", "/")

	if filepath.IsAbs(p) {
		abs := filepath.Clean(p)
		rel, err := filepath.Rel(outputDirAbs, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return "", fmt.Errorf("path escapes output dir")
		}
		return abs, nil
	}

	p = strings.TrimPrefix(p, "/")
	if strings.HasPrefix(p, "output/") {
		p = strings.TrimPrefix(p, "output/")
	}

	cleanRel := filepath.Clean(p)
	if cleanRel == "." || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid relative path")
	}

	abs := filepath.Join(outputDirAbs, cleanRel)
	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(outputDirAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes output dir")
	}

	return abs, nil
}
