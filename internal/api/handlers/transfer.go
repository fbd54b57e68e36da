package handlers

import (
	"fmt"
	"net/http"

	"dimop-backend/internal/registry"
	"dimop-backend/internal/transfer"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles CSV export and import of whole project stores
type TransferHandler struct {
	registry *registry.Registry
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(reg *registry.Registry) *TransferHandler {
	return &TransferHandler{registry: reg}
}

// Export handles GET /projects/:id/export and streams the store as CSV
func (h *TransferHandler) Export(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=project_%d.csv", st.ProjectID()))
	if err := transfer.Export(st, c.Writer); err != nil {
		respondError(c, err)
		return
	}
}

// Import handles POST /projects/:id/import. The payload is a multipart file
// upload named "file"; the whole row-set commits atomically or not at all.
func (h *TransferHandler) Import(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload named 'file' is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer f.Close()

	if err := transfer.Import(st, f); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}
