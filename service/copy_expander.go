package service

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

// ExpandCopies creates quantity independent copies of photo, each starting from defaults.
func ExpandCopies(photo models.SourcePhoto, quantity int, defaults models.CopySettings) ([]models.Copy, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", pkgerrors.ErrInvalidQuantity, quantity)
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	copies := make([]models.Copy, quantity)
	for i := range copies {
		copies[i] = models.Copy{
			CopyID:        uuid.NewString(),
			SourcePhotoID: photo.ID,
			PhotoName:     photo.DisplayName,
			CopyIndex:     i,
			Settings:      defaults,
		}
	}
	return copies, nil
}
