package handlers

import (
	"net/http"

	"dimop-backend/internal/registry"
	"dimop-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// MaterialHandler handles HTTP requests for material operations within a
// project store
type MaterialHandler struct {
	registry *registry.Registry
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(reg *registry.Registry) *MaterialHandler {
	return &MaterialHandler{registry: reg}
}

// CreateMaterial handles POST /projects/:id/materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	var input store.MaterialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	material, err := st.CreateMaterial(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

// ListMaterials handles GET /projects/:id/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	materials, err := st.ListMaterials()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// GetMaterial handles GET /projects/:id/materials/:materialID
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	materialID, ok := pathID(c, "materialID")
	if !ok {
		return
	}
	material, err := st.GetMaterial(materialID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

// UpdateMaterial handles PUT /projects/:id/materials/:materialID
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	materialID, ok := pathID(c, "materialID")
	if !ok {
		return
	}
	var input store.MaterialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	material, err := st.UpdateMaterial(materialID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

// DeleteMaterial handles DELETE /projects/:id/materials/:materialID
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	materialID, ok := pathID(c, "materialID")
	if !ok {
		return
	}
	if err := st.DeleteMaterial(materialID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
