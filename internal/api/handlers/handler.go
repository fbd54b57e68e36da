package handlers

import (
	"net/http"
	"strconv"

	apperrors "dimop-backend/internal/errors"
	"dimop-backend/internal/registry"
	"dimop-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// respondError translates the domain error taxonomy into HTTP status codes:
// validation, cycle, dangling-reference and import errors map to 400,
// unknown ids to 404, blocked deletes and name collisions to 409, and the
// protected bootstrap project to 403.
func respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsValidation(err), apperrors.IsCycle(err), apperrors.IsDanglingReference(err), apperrors.IsImport(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsDuplicateName(err), apperrors.IsReferentialIntegrity(err), apperrors.IsHasChildren(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsProtectedResource(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// projectStore resolves the :id path parameter to an open project store
func projectStore(c *gin.Context, reg *registry.Registry) (*store.Store, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	st, err := reg.Store(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return st, true
}
