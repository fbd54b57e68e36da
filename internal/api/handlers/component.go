package handlers

import (
	"net/http"

	"dimop-backend/internal/registry"
	"dimop-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// ComponentHandler handles HTTP requests for component operations within a
// project store
type ComponentHandler struct {
	registry *registry.Registry
}

// NewComponentHandler creates a new component handler
func NewComponentHandler(reg *registry.Registry) *ComponentHandler {
	return &ComponentHandler{registry: reg}
}

// CreateComponent handles POST /projects/:id/components
func (h *ComponentHandler) CreateComponent(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	var input store.ComponentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	component, err := st.CreateComponent(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, component)
}

// ListComponents handles GET /projects/:id/components
func (h *ComponentHandler) ListComponents(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	components, err := st.ListComponents()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, components)
}

// GetComponent handles GET /projects/:id/components/:componentID
func (h *ComponentHandler) GetComponent(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	componentID, ok := pathID(c, "componentID")
	if !ok {
		return
	}
	component, err := st.GetComponent(componentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// UpdateComponent handles PUT /projects/:id/components/:componentID
func (h *ComponentHandler) UpdateComponent(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	componentID, ok := pathID(c, "componentID")
	if !ok {
		return
	}
	var input store.ComponentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	component, err := st.UpdateComponent(componentID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// DeleteComponent handles DELETE /projects/:id/components/:componentID.
// Deleting a component with children requires ?cascade=true; the subtree is
// then removed as one atomic operation.
func (h *ComponentHandler) DeleteComponent(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	componentID, ok := pathID(c, "componentID")
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"
	if err := st.DeleteComponent(componentID, cascade); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTree handles GET /projects/:id/components/tree
func (h *ComponentHandler) GetTree(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	resolver, err := st.Resolver()
	if err != nil {
		respondError(c, err)
		return
	}
	tree, err := resolver.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roots": tree})
}

// GetGraph handles GET /projects/:id/components/graph and returns graphviz
// DOT source for the component tree
func (h *ComponentHandler) GetGraph(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	resolver, err := st.Resolver()
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, resolver.DOT())
}

// Evaluate handles GET /projects/:id/components/:componentID/evaluation
func (h *ComponentHandler) Evaluate(c *gin.Context) {
	st, ok := projectStore(c, h.registry)
	if !ok {
		return
	}
	componentID, ok := pathID(c, "componentID")
	if !ok {
		return
	}
	eval, err := st.Evaluate(componentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}
