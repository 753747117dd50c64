package cart

import (
	"fmt"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

// BuildPrintJob turns a finalized or paid order into the record sent to the lab.
// Eager jobs carry every rendered composition and fail with ErrMissingRender when one
// is absent; lazy jobs carry the settings and processing hints instead.
func BuildPrintJob(c *catalog.Catalog, order models.Order, mode models.PrintJobMode) (models.PrintJob, error) {
	if order.Status != models.OrderFinalized && order.Status != models.OrderPaid {
		return models.PrintJob{}, fmt.Errorf("%w: order %s is %s", pkgerrors.ErrInvalidTransition, order.ID, order.Status)
	}
	if mode != models.PrintJobEager && mode != models.PrintJobLazy {
		return models.PrintJob{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown print job mode %q", mode))
	}

	job := models.PrintJob{
		OrderID:     order.ID,
		Mode:        mode,
		TotalCopies: order.TotalCopies,
		GrandTotal:  order.GrandTotal,
		Lines:       make([]models.PrintLine, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		size, err := c.Lookup(item.SizeID)
		if err != nil {
			return models.PrintJob{}, err
		}
		line := models.PrintLine{
			SizeID:        size.ID,
			SizeName:      size.Name,
			Dimensions:    size.Dimensions,
			PixelWidth:    size.PixelWidth,
			PixelHeight:   size.PixelHeight,
			PricePerUnit:  size.UnitPrice,
			IsPairPricing: size.IsPairPricing(),
			TotalCopies:   item.TotalCopies,
			Subtotal:      item.Subtotal,
			Copies:        make([]models.PrintCopy, 0, len(item.Entries)),
		}
		for _, entry := range item.Entries {
			pc := models.PrintCopy{
				CopyID:        entry.Copy.CopyID,
				CopyIndex:     entry.Copy.CopyIndex,
				SourcePhotoID: entry.Copy.SourcePhotoID,
				PhotoName:     entry.Copy.PhotoName,
			}
			if mode == models.PrintJobEager {
				if entry.Result == nil || len(entry.Result.Raster) == 0 {
					return models.PrintJob{}, fmt.Errorf("%w: copy %s", pkgerrors.ErrMissingRender, entry.Copy.CopyID)
				}
				pc.Rendered = entry.Result.Raster
			} else {
				settings := entry.Copy.Settings
				pc.Settings = &settings
				pc.Processing = ProcessingHintsFor(settings)
			}
			line.Copies = append(line.Copies, pc)
		}
		job.Lines = append(job.Lines, line)
	}
	return job, nil
}

// ProcessingHintsFor expresses settings the way browser-based lab tooling applies them.
func ProcessingHintsFor(s models.CopySettings) *models.ProcessingHints {
	hints := &models.ProcessingHints{
		ObjectFit: "cover",
		Transform: fmt.Sprintf("rotate(%ddeg)", s.RotationDegrees),
	}
	if s.FitMode == models.FitFit {
		hints.ObjectFit = "contain"
	}
	if s.Margins.HasMargin() {
		hints.BorderConfig = &models.BorderConfig{
			Width: fmt.Sprintf("%gmm", s.Margins.WidthMillimeters()),
			Color: s.Margins.Color(),
		}
	}
	return hints
}
