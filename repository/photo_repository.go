package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

var photoIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// PhotoRepository stores uploads on disk: <dir>/<id>.img with a <id>.json metadata file.
type PhotoRepository struct {
	dir string
}

// NewPhotoRepository ensures dir exists
func NewPhotoRepository(dir string) (*PhotoRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &PhotoRepository{dir: dir}, nil
}

var _ PhotoRepositoryInterface = (*PhotoRepository)(nil)

func (r *PhotoRepository) paths(photoID string) (string, string, error) {
	if !photoIDPattern.MatchString(photoID) {
		return "", "", fmt.Errorf("%w: invalid id %q", pkgerrors.ErrPhotoNotFound, photoID)
	}
	base := filepath.Join(r.dir, photoID)
	return base + ".img", base + ".json", nil
}

func (r *PhotoRepository) Save(_ context.Context, photo models.SourcePhoto) error {
	imgPath, metaPath, err := r.paths(photo.ID)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("failed to encode photo metadata: %w", err)
	}
	if err := os.WriteFile(imgPath, photo.Data, 0644); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0644); err != nil {
		return fmt.Errorf("failed to write photo metadata: %w", err)
	}
	logger.L().Debugf("💾 Photo stored: %s (%d bytes)", photo.ID, len(photo.Data))
	return nil
}

func (r *PhotoRepository) Get(_ context.Context, photoID string) (models.SourcePhoto, error) {
	imgPath, metaPath, err := r.paths(photoID)
	if err != nil {
		return models.SourcePhoto{}, err
	}
	meta, err := os.ReadFile(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return models.SourcePhoto{}, fmt.Errorf("%w: %s", pkgerrors.ErrPhotoNotFound, photoID)
	}
	if err != nil {
		return models.SourcePhoto{}, fmt.Errorf("failed to read photo metadata: %w", err)
	}
	var photo models.SourcePhoto
	if err := json.Unmarshal(meta, &photo); err != nil {
		return models.SourcePhoto{}, fmt.Errorf("failed to decode photo metadata: %w", err)
	}
	photo.Data, err = os.ReadFile(imgPath)
	if err != nil {
		return models.SourcePhoto{}, fmt.Errorf("failed to read photo: %w", err)
	}
	return photo, nil
}

func (r *PhotoRepository) Delete(_ context.Context, photoID string) error {
	imgPath, metaPath, err := r.paths(photoID)
	if err != nil {
		return err
	}
	for _, p := range []string{imgPath, metaPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete photo: %w", err)
		}
	}
	return nil
}
