package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

const (
	manifestName     = "manifest.json"
	driveFolderMime  = "application/vnd.google-apps.folder"
	renderedMimeType = "image/jpeg"
)

// RenderFileName is the name of one rendered copy inside its size folder.
func RenderFileName(c models.PrintCopy) string {
	return fmt.Sprintf("%d_%s.jpg", c.CopyIndex, safeFileName(c.CopyID))
}

// manifestOf returns job without raster bytes; rendered copies are separate files.
func manifestOf(job models.PrintJob) ([]byte, error) {
	stripped := job
	stripped.Lines = make([]models.PrintLine, len(job.Lines))
	for i, line := range job.Lines {
		line.Copies = append([]models.PrintCopy(nil), line.Copies...)
		for j := range line.Copies {
			line.Copies[j].Rendered = nil
		}
		stripped.Lines[i] = line
	}
	return json.MarshalIndent(stripped, "", "  ")
}

// DrivePrintBackend uploads print jobs to a Google Drive folder shared with the lab.
// Layout: <folder>/<order>/manifest.json and, for eager jobs, <order>/<size>/<index>_<copy>.jpg.
type DrivePrintBackend struct {
	client   *drive.Service
	folderID string
}

// NewDrivePrintBackend creates a backend authenticated with a Service Account JSON file.
func NewDrivePrintBackend(ctx context.Context, credentialsPath, folderID string) (*DrivePrintBackend, error) {
	if folderID == "" {
		return nil, fmt.Errorf("print folder id is required")
	}
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DrivePrintBackend{client: client, folderID: folderID}, nil
}

var _ PrintBackendInterface = (*DrivePrintBackend)(nil)

func (b *DrivePrintBackend) Submit(ctx context.Context, job models.PrintJob) (string, error) {
	orderFolder, err := b.createFolder(ctx, job.OrderID, b.folderID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create order folder")
	}

	manifest, err := manifestOf(job)
	if err != nil {
		return "", err
	}
	if _, err := b.upload(ctx, manifestName, "application/json", orderFolder, manifest); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to upload manifest")
	}

	if job.Mode == models.PrintJobEager {
		for _, line := range job.Lines {
			sizeFolder, err := b.createFolder(ctx, line.SizeID, orderFolder)
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create size folder")
			}
			for _, c := range line.Copies {
				if _, err := b.upload(ctx, RenderFileName(c), renderedMimeType, sizeFolder, c.Rendered); err != nil {
					return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("failed to upload copy %s", c.CopyID))
				}
			}
		}
	}

	logger.L().Infof("📤 Print job for order %s uploaded to Drive folder %s", job.OrderID, orderFolder)
	return fmt.Sprintf("https://drive.google.com/drive/folders/%s", orderFolder), nil
}

func (b *DrivePrintBackend) createFolder(ctx context.Context, name, parent string) (string, error) {
	f, err := b.client.Files.Create(&drive.File{
		Name:     name,
		MimeType: driveFolderMime,
		Parents:  []string{parent},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (b *DrivePrintBackend) upload(ctx context.Context, name, mimeType, parent string, data []byte) (string, error) {
	f, err := b.client.Files.Create(&drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{parent},
	}).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

// DirPrintBackend writes print jobs under a local directory with the same layout as
// DrivePrintBackend. Used when no Drive credentials are configured.
type DirPrintBackend struct {
	dir string
}

func NewDirPrintBackend(dir string) *DirPrintBackend {
	return &DirPrintBackend{dir: dir}
}

var _ PrintBackendInterface = (*DirPrintBackend)(nil)

func (b *DirPrintBackend) Submit(ctx context.Context, job models.PrintJob) (string, error) {
	orderDir := filepath.Join(b.dir, safeFileName(job.OrderID))
	if err := os.MkdirAll(orderDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create order directory: %w", err)
	}
	manifest, err := manifestOf(job)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(orderDir, manifestName), manifest, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	if job.Mode == models.PrintJobEager {
		for _, line := range job.Lines {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			sizeDir := filepath.Join(orderDir, safeFileName(line.SizeID))
			if err := os.MkdirAll(sizeDir, 0755); err != nil {
				return "", fmt.Errorf("failed to create size directory: %w", err)
			}
			for _, c := range line.Copies {
				if err := os.WriteFile(filepath.Join(sizeDir, RenderFileName(c)), c.Rendered, 0644); err != nil {
					return "", fmt.Errorf("failed to write copy %s: %w", c.CopyID, err)
				}
			}
		}
	}

	logger.L().Infof("📤 Print job for order %s written to %s", job.OrderID, orderDir)
	return orderDir, nil
}
