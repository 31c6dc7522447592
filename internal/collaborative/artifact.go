package collaborative

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/course-recommender/internal/logging"
)

const (
	kindSVD = "svd"
	kindKNN = "knn"
)

// LoadSVD reads a factorization artifact written by SaveSVD.
func LoadSVD(path string) (*SVD, error) {
	var m SVD
	if err := readArtifact(path, &m); err != nil {
		return nil, err
	}
	if m.Kind != kindSVD {
		return nil, fmt.Errorf("artifact %s: expected kind %q, got %q", path, kindSVD, m.Kind)
	}
	return &m, nil
}

// LoadKNN reads a neighborhood artifact written by SaveKNN.
func LoadKNN(path string) (*KNN, error) {
	var m KNN
	if err := readArtifact(path, &m); err != nil {
		return nil, err
	}
	if m.Kind != kindKNN {
		return nil, fmt.Errorf("artifact %s: expected kind %q, got %q", path, kindKNN, m.Kind)
	}
	return &m, nil
}

func SaveSVD(path string, m *SVD) error {
	m.Kind = kindSVD
	return writeArtifact(path, m)
}

func SaveKNN(path string, m *KNN) error {
	m.Kind = kindKNN
	return writeArtifact(path, m)
}

// LoadModels loads whichever artifacts exist. A missing file leaves that
// predictor nil; a corrupt one is an error.
func LoadModels(svdPath, knnPath string) (*Models, error) {
	log := logging.Component("collaborative")
	models := &Models{}

	if svdPath != "" {
		m, err := LoadSVD(svdPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn().Str("path", svdPath).Msg("svd artifact not found")
		case err != nil:
			return nil, err
		default:
			models.SVD = m
			log.Info().Str("path", svdPath).Int("users", len(m.Users)).Int("courses", len(m.Items)).Msg("svd model loaded")
		}
	}

	if knnPath != "" {
		m, err := LoadKNN(knnPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn().Str("path", knnPath).Msg("knn artifact not found")
		case err != nil:
			return nil, err
		default:
			models.KNN = m
			log.Info().Str("path", knnPath).Int("users", len(m.UserRatings)).Int("courses", len(m.Neighbors)).Msg("knn model loaded")
		}
	}

	return models, nil
}

func readArtifact(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return nil
}

// writeArtifact writes to a temp file and renames it into place so a
// running server never observes a partial artifact.
func writeArtifact(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
