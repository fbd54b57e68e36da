package repository

import (
	"dimop-backend/internal/database/models"

	"gorm.io/gorm"
)

// MaterialRepository handles database operations for materials within one
// project store
type MaterialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create creates a new material
func (r *MaterialRepository) Create(material *models.Material) error {
	return r.db.Create(material).Error
}

// GetByID retrieves a material by ID
func (r *MaterialRepository) GetByID(id uint) (*models.Material, error) {
	var material models.Material
	err := r.db.First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetAll retrieves all materials ordered by insertion order
func (r *MaterialRepository) GetAll() ([]models.Material, error) {
	var materials []models.Material
	err := r.db.Order("id").Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

// Update updates a material
func (r *MaterialRepository) Update(material *models.Material) error {
	return r.db.Save(material).Error
}

// Delete deletes a material
func (r *MaterialRepository) Delete(id uint) error {
	return r.db.Delete(&models.Material{}, "id = ?", id).Error
}

// Exists checks if a material exists by ID
func (r *MaterialRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Material{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CountReferencingComponents counts components that still reference the material
func (r *MaterialRepository) CountReferencingComponents(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Component{}).Where("material_id = ?", id).Count(&count).Error
	return count, err
}
