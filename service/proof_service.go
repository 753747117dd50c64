package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/repository"
	"mifoto-print/utils"
)

//go:embed templates/proof.html
var proofTemplate string

// ProofService renders the operator proof sheet of an order
type ProofService struct {
	photos     repository.PhotoRepositoryInterface
	catalog    *catalog.Catalog
	chromePath string
	tmpl       *template.Template
}

type proofCopy struct {
	Index     int
	PhotoName string
	Thumb     template.URL
	Margin    string
	Fit       string
	Rotation  int
}

type proofLine struct {
	SizeName    string
	Dimensions  string
	TotalCopies int
	Pairs       int
	Subtotal    string
	Copies      []proofCopy
}

type proofData struct {
	OrderID     string
	Status      models.OrderStatus
	CreatedAt   string
	TotalCopies int
	GrandTotal  string
	Lines       []proofLine
}

// NewProofService creates a ProofService. chromePath may be empty to auto-detect.
func NewProofService(photos repository.PhotoRepositoryInterface, c *catalog.Catalog, chromePath string) (*ProofService, error) {
	tmpl, err := template.New("proof").Parse(proofTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &ProofService{photos: photos, catalog: c, chromePath: chromePath, tmpl: tmpl}, nil
}

// detectChromePath returns the configured path when it exists, else the first common install path found.
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// thumbnail returns a data URL of the photo's thumb, or "" when it cannot be produced.
func (s *ProofService) thumbnail(ctx context.Context, photoID string) template.URL {
	photo, err := s.photos.Get(ctx, photoID)
	if err != nil {
		logger.L().Warnf("⚠️  Warning: Failed to load photo %s for proof: %v", photoID, err)
		return ""
	}
	thumb, err := OptimizeImage(photo.Data, "thumb")
	if err != nil {
		logger.L().Warnf("⚠️  Warning: Failed to build thumbnail for %s: %v", photoID, err)
		return ""
	}
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb))
}

// RenderProofHTML renders the proof sheet of order.
func (s *ProofService) RenderProofHTML(ctx context.Context, order models.Order) (string, error) {
	data := proofData{
		OrderID:     order.ID,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt.Format("02/01/2006 15:04"),
		TotalCopies: order.TotalCopies,
		GrandTotal:  utils.FormatPrice(order.GrandTotal),
	}

	thumbs := map[string]template.URL{}
	for _, item := range order.Items {
		size, err := s.catalog.Lookup(item.SizeID)
		if err != nil {
			return "", err
		}
		line := proofLine{
			SizeName:    size.Name,
			Dimensions:  size.Dimensions,
			TotalCopies: item.TotalCopies,
			Pairs:       item.Pairs,
			Subtotal:    utils.FormatPrice(item.Subtotal),
		}
		for _, entry := range item.Entries {
			c := entry.Copy
			thumb, ok := thumbs[c.SourcePhotoID]
			if !ok {
				thumb = s.thumbnail(ctx, c.SourcePhotoID)
				thumbs[c.SourcePhotoID] = thumb
			}
			line.Copies = append(line.Copies, proofCopy{
				Index:     c.CopyIndex + 1,
				PhotoName: c.PhotoName,
				Thumb:     thumb,
				Margin:    utils.MapMarginStyleToLabel(c.Settings.Margins.Style),
				Fit:       utils.MapFitModeToLabel(c.Settings.FitMode),
				Rotation:  c.Settings.RotationDegrees,
			})
		}
		data.Lines = append(data.Lines, line)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF prints the proof sheet of order to an A4 PDF using headless Chrome.
func (s *ProofService) GeneratePDF(ctx context.Context, order models.Order) ([]byte, error) {
	html, err := s.RenderProofHTML(ctx, order)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		// thumbnails are inline data URLs; wait until every image is decoded
		chromedp.Evaluate(`
			Promise.all(Array.from(document.images).map(img => img.decode().catch(() => null)))
		`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(8.27).   // 210mm in inches
				WithPaperHeight(11.69). // 297mm in inches
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to generate PDF")
	}

	logger.L().Infof("📄 Proof sheet for order %s generated (%d bytes)", order.ID, len(pdfBuf))
	return pdfBuf, nil
}

// ProofServiceInterface defines the contract for proof sheet generation
type ProofServiceInterface interface {
	GeneratePDF(ctx context.Context, order models.Order) ([]byte, error)
}

// Ensure ProofService implements ProofServiceInterface
var _ ProofServiceInterface = (*ProofService)(nil)
