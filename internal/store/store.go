// Package store implements the per-project entity store: validated CRUD for
// materials and components scoped to one isolated project database.
package store

import (
	"errors"
	"fmt"
	"sync"

	"dimop-backend/internal/database/models"
	apperrors "dimop-backend/internal/errors"
	"dimop-backend/internal/hierarchy"
	"dimop-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Store owns one project's materials and components. All operations hold the
// store mutex, so two operations never interleave their reads and writes on
// the same project. Stores of different projects are independent.
type Store struct {
	projectID  uint
	db         *gorm.DB
	materials  *repository.MaterialRepository
	components *repository.ComponentRepository
	validator  *validator.Validate

	mu sync.Mutex
}

// New creates a store on an already opened project database
func New(projectID uint, db *gorm.DB, validate *validator.Validate) *Store {
	return &Store{
		projectID:  projectID,
		db:         db,
		materials:  repository.NewMaterialRepository(db),
		components: repository.NewComponentRepository(db),
		validator:  validate,
	}
}

// ProjectID returns the owning project's id
func (s *Store) ProjectID() uint {
	return s.projectID
}

// DB exposes the underlying handle for lifecycle management by the registry
func (s *Store) DB() *gorm.DB {
	return s.db
}

// MaterialInput carries the mutable fields of a material
type MaterialInput struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	CO2Value *float64 `json:"co2_value"`
}

// ComponentInput carries the mutable fields of a component
type ComponentInput struct {
	Name           string                 `json:"name"`
	Ebene          int                    `json:"ebene"`
	MaterialID     uint                   `json:"material_id"`
	ParentID       *uint                  `json:"parent_id"`
	ConnectionType *models.ConnectionType `json:"connection_type"`
	Weight         *float64               `json:"weight"`
}

// CreateMaterial validates the fields, assigns a fresh id and persists the
// material
func (s *Store) CreateMaterial(input MaterialInput) (*models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	material := &models.Material{
		Name:     input.Name,
		Amount:   input.Amount,
		CO2Value: input.CO2Value,
	}
	if err := s.validateStruct(material); err != nil {
		return nil, err
	}
	if err := s.materials.Create(material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return material, nil
}

// GetMaterial retrieves a material by id
func (s *Store) GetMaterial(id uint) (*models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMaterial(id)
}

func (s *Store) getMaterial(id uint) (*models.Material, error) {
	material, err := s.materials.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("material", id)
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return material, nil
}

// ListMaterials returns all materials in insertion order
func (s *Store) ListMaterials() ([]models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.materials.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// UpdateMaterial updates the mutable fields of a material in place. The id
// is immutable once assigned.
func (s *Store) UpdateMaterial(id uint, input MaterialInput) (*models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	material, err := s.getMaterial(id)
	if err != nil {
		return nil, err
	}
	material.Name = input.Name
	material.Amount = input.Amount
	material.CO2Value = input.CO2Value
	if err := s.validateStruct(material); err != nil {
		return nil, err
	}
	if err := s.materials.Update(material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return material, nil
}

// DeleteMaterial deletes a material. Materials cannot be deleted while any
// component still references them.
func (s *Store) DeleteMaterial(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getMaterial(id); err != nil {
		return err
	}
	refs, err := s.materials.CountReferencingComponents(id)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return &apperrors.ReferentialIntegrityError{
			Entity:  "material",
			ID:      id,
			Message: fmt.Sprintf("%d component(s) still reference it", refs),
		}
	}
	if err := s.materials.Delete(id); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}

// CreateComponent validates the fields and hierarchy references, assigns a
// fresh id and persists the component
func (s *Store) CreateComponent(input ComponentInput) (*models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	component := &models.Component{
		Name:           input.Name,
		Ebene:          input.Ebene,
		MaterialID:     input.MaterialID,
		ParentID:       input.ParentID,
		ConnectionType: input.ConnectionType,
		Weight:         input.Weight,
	}
	if err := s.validateStruct(component); err != nil {
		return nil, err
	}
	if err := s.checkComponentRefs(component); err != nil {
		return nil, err
	}
	if err := s.components.Create(component); err != nil {
		return nil, fmt.Errorf("failed to create component: %w", err)
	}
	return component, nil
}

// GetComponent retrieves a component by id
func (s *Store) GetComponent(id uint) (*models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getComponent(id)
}

func (s *Store) getComponent(id uint) (*models.Component, error) {
	component, err := s.components.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("component", id)
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return component, nil
}

// ListComponents returns all components in insertion order
func (s *Store) ListComponents() ([]models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	components, err := s.components.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return components, nil
}

// UpdateComponent updates the mutable fields of a component. Moving a
// component under its own descendant is rejected as a cycle.
func (s *Store) UpdateComponent(id uint, input ComponentInput) (*models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	component, err := s.getComponent(id)
	if err != nil {
		return nil, err
	}
	component.Name = input.Name
	component.Ebene = input.Ebene
	component.MaterialID = input.MaterialID
	component.ParentID = input.ParentID
	component.ConnectionType = input.ConnectionType
	component.Weight = input.Weight
	if err := s.validateStruct(component); err != nil {
		return nil, err
	}
	if err := s.checkComponentRefs(component); err != nil {
		return nil, err
	}
	if err := s.components.Update(component); err != nil {
		return nil, fmt.Errorf("failed to update component: %w", err)
	}
	return component, nil
}

// DeleteComponent deletes a component. With children it fails unless the
// caller explicitly requests a cascading delete, in which case the whole
// subtree is removed in one transaction.
func (s *Store) DeleteComponent(id uint, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getComponent(id); err != nil {
		return err
	}
	hasChildren, err := s.components.HasChildren(id)
	if err != nil {
		return fmt.Errorf("failed to check children: %w", err)
	}
	if hasChildren && !cascade {
		return &apperrors.HasChildrenError{ID: id}
	}
	if !hasChildren {
		if err := s.components.Delete(id); err != nil {
			return fmt.Errorf("failed to delete component: %w", err)
		}
		return nil
	}

	resolver, err := s.resolver()
	if err != nil {
		return err
	}
	subtree, err := resolver.Subtree(id)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(subtree)+1)
	ids = append(ids, id)
	for _, c := range subtree {
		ids = append(ids, c.ID)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.components.DeleteMany(tx, ids)
	})
	if err != nil {
		return fmt.Errorf("failed to cascade delete component: %w", err)
	}
	return nil
}

// ChildrenOf returns the direct children of a component in insertion order
func (s *Store) ChildrenOf(id uint) ([]models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getComponent(id); err != nil {
		return nil, err
	}
	children, err := s.components.GetByParentID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// ValidateTree checks the full component set for cycles and dangling
// references without modifying anything
func (s *Store) ValidateTree() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolver, err := s.resolver()
	if err != nil {
		return err
	}
	return resolver.Validate()
}

// Resolver builds a hierarchy resolver over the current component snapshot
func (s *Store) Resolver() (*hierarchy.Resolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver()
}

func (s *Store) resolver() (*hierarchy.Resolver, error) {
	components, err := s.components.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load components: %w", err)
	}
	materials, err := s.materials.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	materialIDs := make([]uint, len(materials))
	for i, m := range materials {
		materialIDs[i] = m.ID
	}
	return hierarchy.New(components, materialIDs), nil
}

// Snapshot returns all materials and components under one lock, so exports
// see a consistent store state
func (s *Store) Snapshot() ([]models.Material, []models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.materials.GetAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load materials: %w", err)
	}
	components, err := s.components.GetAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load components: %w", err)
	}
	return materials, components, nil
}

// RunInTransaction executes fn inside one transaction while holding the
// store lock. CSV import uses this so a whole row-set commits together or
// not at all.
func (s *Store) RunInTransaction(fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(fn)
}

// ValidateEntity exposes schema validation for callers that persist records
// outside the regular CRUD path, such as the CSV importer
func (s *Store) ValidateEntity(v interface{}) error {
	return s.validateStruct(v)
}

// checkComponentRefs verifies that the referenced material and parent exist
// in this project and that the parent link does not close a cycle
func (s *Store) checkComponentRefs(component *models.Component) error {
	exists, err := s.materials.Exists(component.MaterialID)
	if err != nil {
		return fmt.Errorf("failed to check material: %w", err)
	}
	if !exists {
		return &apperrors.DanglingReferenceError{ID: component.ID, Field: "material_id", Ref: component.MaterialID}
	}
	if component.ParentID == nil {
		return nil
	}
	if component.ID != 0 && *component.ParentID == component.ID {
		return &apperrors.CycleError{ID: component.ID}
	}
	exists, err = s.components.Exists(*component.ParentID)
	if err != nil {
		return fmt.Errorf("failed to check parent: %w", err)
	}
	if !exists {
		return &apperrors.DanglingReferenceError{ID: component.ID, Field: "parent_id", Ref: *component.ParentID}
	}
	if component.ID != 0 {
		resolver, err := s.resolver()
		if err != nil {
			return err
		}
		if resolver.WouldCycle(component.ID, *component.ParentID) {
			return &apperrors.CycleError{ID: component.ID}
		}
	}
	return nil
}

// validateStruct translates validator violations into the ValidationError
// taxonomy, naming the offending field
func (s *Store) validateStruct(v interface{}) error {
	err := s.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return apperrors.NewValidationError(f.Field(), fmt.Sprintf("failed %q constraint", f.Tag()))
	}
	return apperrors.NewValidationError("", err.Error())
}
