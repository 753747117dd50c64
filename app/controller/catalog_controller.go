package controller

import (
	"net/http"

	"mifoto-print/catalog"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/utils"
)

// CatalogController serves the printable sizes
type CatalogController struct {
	catalog *catalog.Catalog
}

func NewCatalogController(c *catalog.Catalog) *CatalogController {
	return &CatalogController{catalog: c}
}

// ListSizes handles GET /sizes
func (c *CatalogController) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes := c.catalog.All()
	resp := make([]models.SizeResponse, 0, len(sizes))
	for _, size := range sizes {
		resp = append(resp, models.SizeResponse{
			SizeDescriptor:  size,
			DisplayPrice:    utils.FormatPrice(size.UnitPrice),
			InitialQuantity: c.catalog.InitialQuantity(size.ID),
		})
	}
	logger.L().Debugf("📋 ListSizes: %d sizes", len(resp))
	writeJSON(w, http.StatusOK, resp)
}
