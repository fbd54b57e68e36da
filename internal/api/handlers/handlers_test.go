package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dimop-backend/internal/api/routes"
	"dimop-backend/internal/config"
	"dimop-backend/internal/database/models"
	"dimop-backend/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	registry *registry.Registry
	router   *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	reg, err := registry.New(registry.Options{
		DataDir:          s.T().TempDir(),
		BootstrapProject: "Default",
	}, validator.New())
	require.NoError(s.T(), err)
	s.registry = reg
	s.router = routes.SetupRoutes(reg, &config.Config{Environment: "test", LogLevel: "error"})
}

func (s *HandlerTestSuite) TearDownTest() {
	require.NoError(s.T(), s.registry.Close())
}

func (s *HandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), out))
}

func (s *HandlerTestSuite) createProject(name string) models.Project {
	w := s.request(http.MethodPost, "/api/v1/projects", gin.H{"name": name})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var project models.Project
	s.decode(w, &project)
	return project
}

func (s *HandlerTestSuite) createMaterial(projectID uint, body gin.H) models.Material {
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/materials", projectID), body)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var material models.Material
	s.decode(w, &material)
	return material
}

func (s *HandlerTestSuite) createComponent(projectID uint, body gin.H) models.Component {
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/components", projectID), body)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var component models.Component
	s.decode(w, &component)
	return component
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.request(http.MethodGet, "/health", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestProjectLifecycle() {
	project := s.createProject("P1")
	assert.Equal(s.T(), "P1", project.Name)
	assert.False(s.T(), project.Bootstrap)

	w := s.request(http.MethodGet, "/api/v1/projects", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var projects []models.Project
	s.decode(w, &projects)
	require.Len(s.T(), projects, 2)
	assert.True(s.T(), projects[0].Bootstrap)
	assert.Equal(s.T(), "P1", projects[1].Name)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/projects/%d", project.ID), gin.H{"name": "P1-renamed"})
	require.Equal(s.T(), http.StatusOK, w.Code)
	var renamed models.Project
	s.decode(w, &renamed)
	assert.Equal(s.T(), "P1-renamed", renamed.Name)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", project.ID), nil)
	assert.Equal(s.T(), http.StatusNoContent, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", project.ID), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestUnknownProjectIs404() {
	w := s.request(http.MethodGet, "/api/v1/projects/99", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, "/api/v1/projects/99/materials", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestInvalidPathIDIs400() {
	w := s.request(http.MethodGet, "/api/v1/projects/abc", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestDuplicateProjectNameIs409() {
	w := s.request(http.MethodPost, "/api/v1/projects", gin.H{"name": "Default"})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestDeleteBootstrapProjectIs403() {
	w := s.request(http.MethodDelete, "/api/v1/projects/1", nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestMaterialValidationIs400() {
	project := s.createProject("P1")
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/materials", project.ID),
		gin.H{"name": "Steel", "amount": -5})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestDeleteReferencedMaterialIs409() {
	project := s.createProject("P1")
	material := s.createMaterial(project.ID, gin.H{"name": "Steel", "amount": 100})
	s.createComponent(project.ID, gin.H{"name": "Bolt", "material_id": material.ID})

	w := s.request(http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%d/materials/%d", project.ID, material.ID), nil)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestComponentWithUnknownMaterialIs400() {
	project := s.createProject("P1")
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/components", project.ID),
		gin.H{"name": "Bolt", "material_id": 42})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestDeleteComponentWithChildren() {
	project := s.createProject("P1")
	material := s.createMaterial(project.ID, gin.H{"name": "Steel", "amount": 100})
	root := s.createComponent(project.ID, gin.H{"name": "Frame", "material_id": material.ID})
	child := s.createComponent(project.ID, gin.H{
		"name": "Axle", "ebene": 1, "material_id": material.ID, "parent_id": root.ID,
	})

	// Without cascade the delete is refused
	base := fmt.Sprintf("/api/v1/projects/%d/components/%d", project.ID, root.ID)
	w := s.request(http.MethodDelete, base, nil)
	assert.Equal(s.T(), http.StatusConflict, w.Code)

	// With cascade the whole subtree goes
	w = s.request(http.MethodDelete, base+"?cascade=true", nil)
	assert.Equal(s.T(), http.StatusNoContent, w.Code)

	w = s.request(http.MethodGet,
		fmt.Sprintf("/api/v1/projects/%d/components/%d", project.ID, child.ID), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestTreeAndGraph() {
	project := s.createProject("P1")
	material := s.createMaterial(project.ID, gin.H{"name": "Steel", "amount": 100})
	root := s.createComponent(project.ID, gin.H{"name": "Frame", "material_id": material.ID})
	s.createComponent(project.ID, gin.H{
		"name": "Axle", "ebene": 1, "material_id": material.ID, "parent_id": root.ID,
	})

	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/components/tree", project.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var tree struct {
		Roots []struct {
			ID       uint   `json:"id"`
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"roots"`
	}
	s.decode(w, &tree)
	require.Len(s.T(), tree.Roots, 1)
	assert.Equal(s.T(), "Frame", tree.Roots[0].Name)
	require.Len(s.T(), tree.Roots[0].Children, 1)
	assert.Equal(s.T(), "Axle", tree.Roots[0].Children[0].Name)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/components/graph", project.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "digraph components")
	assert.Contains(s.T(), w.Body.String(), "Frame")
}

func (s *HandlerTestSuite) TestEvaluation() {
	project := s.createProject("P1")
	material := s.createMaterial(project.ID, gin.H{"name": "Steel", "amount": 100, "co2_value": 2.0})
	leaf := s.createComponent(project.ID, gin.H{"name": "Bolt", "material_id": material.ID, "weight": 3.0})

	w := s.request(http.MethodGet,
		fmt.Sprintf("/api/v1/projects/%d/components/%d/evaluation", project.ID, leaf.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var eval struct {
		EffectiveWeight float64 `json:"effective_weight"`
		TotalCO2        float64 `json:"total_co2"`
		LeafCount       int     `json:"leaf_count"`
	}
	s.decode(w, &eval)
	assert.Equal(s.T(), 3.0, eval.EffectiveWeight)
	assert.Equal(s.T(), 6.0, eval.TotalCO2)
	assert.Equal(s.T(), 1, eval.LeafCount)
}

func (s *HandlerTestSuite) TestExportImportAcrossProjects() {
	src := s.createProject("P1")
	material := s.createMaterial(src.ID, gin.H{"name": "Steel", "amount": 100, "co2_value": 2.5})
	s.createComponent(src.ID, gin.H{"name": "Bolt", "material_id": material.ID})

	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/export", src.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(s.T(), w.Header().Get("Content-Disposition"), fmt.Sprintf("project_%d.csv", src.ID))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(s.T(), lines, 3, "header plus one row per entity")

	dst := s.createProject("P2")
	upload := s.uploadCSV(dst.ID, w.Body.Bytes())
	require.Equal(s.T(), http.StatusOK, upload.Code, upload.Body.String())

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/materials", dst.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var materials []models.Material
	s.decode(w, &materials)
	require.Len(s.T(), materials, 1)
	assert.Equal(s.T(), "Steel", materials[0].Name)
	require.NotNil(s.T(), materials[0].CO2Value)
	assert.Equal(s.T(), 2.5, *materials[0].CO2Value)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/components", dst.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var components []models.Component
	s.decode(w, &components)
	require.Len(s.T(), components, 1)
	assert.Equal(s.T(), "Bolt", components[0].Name)
	assert.Equal(s.T(), materials[0].ID, components[0].MaterialID, "reference follows the renumbered material")
}

func (s *HandlerTestSuite) TestImportMalformedCSVIs400() {
	project := s.createProject("P1")
	payload := "model,id,name,amount\nwidget,1,Gadget,\n"
	w := s.uploadCSV(project.ID, []byte(payload))
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	// Nothing was committed
	list := s.request(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/materials", project.ID), nil)
	require.Equal(s.T(), http.StatusOK, list.Code)
	var materials []models.Material
	s.decode(list, &materials)
	assert.Empty(s.T(), materials)
}

func (s *HandlerTestSuite) TestImportRequiresFileField() {
	project := s.createProject("P1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(s.T(), mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/projects/%d/import", project.ID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) uploadCSV(projectID uint, payload []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(s.T(), err)
	_, err = part.Write(payload)
	require.NoError(s.T(), err)
	require.NoError(s.T(), mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/projects/%d/import", projectID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
