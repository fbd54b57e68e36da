package repository

import (
	"dimop-backend/internal/database/models"

	"gorm.io/gorm"
)

// ComponentRepository handles database operations for components within one
// project store
type ComponentRepository struct {
	db *gorm.DB
}

// NewComponentRepository creates a new component repository
func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// Create creates a new component
func (r *ComponentRepository) Create(component *models.Component) error {
	return r.db.Create(component).Error
}

// GetByID retrieves a component by ID
func (r *ComponentRepository) GetByID(id uint) (*models.Component, error) {
	var component models.Component
	err := r.db.First(&component, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// GetAll retrieves all components ordered by insertion order
func (r *ComponentRepository) GetAll() ([]models.Component, error) {
	var components []models.Component
	err := r.db.Order("id").Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}

// GetByParentID retrieves the direct children of a component in insertion order
func (r *ComponentRepository) GetByParentID(parentID uint) ([]models.Component, error) {
	var components []models.Component
	err := r.db.Where("parent_id = ?", parentID).Order("id").Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}

// Update updates a component
func (r *ComponentRepository) Update(component *models.Component) error {
	return r.db.Save(component).Error
}

// Delete deletes a component
func (r *ComponentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Component{}, "id = ?", id).Error
}

// DeleteMany deletes a set of components inside the given transaction. Used
// by cascading deletes so a whole subtree is removed atomically.
func (r *ComponentRepository) DeleteMany(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Delete(&models.Component{}, "id IN ?", ids).Error
}

// Exists checks if a component exists by ID
func (r *ComponentRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Component{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// HasChildren checks if any component references the given ID as its parent
func (r *ComponentRepository) HasChildren(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Component{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}
