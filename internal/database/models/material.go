package models

// Material represents raw stock referenced by components.
// CO2Value was added after the initial release; it is pointer-typed so rows
// persisted before the column existed stay readable and default to unset.
type Material struct {
	ID       uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string   `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Amount   float64  `json:"amount" gorm:"not null;default:0" validate:"gte=0"`
	CO2Value *float64 `json:"co2_value,omitempty" validate:"omitempty,gte=0"`
}

// TableName returns the table name for Material
func (Material) TableName() string {
	return "materials"
}

// CO2OrDefault returns the stored CO2 value, or 0 for legacy rows
func (m *Material) CO2OrDefault() float64 {
	if m.CO2Value == nil {
		return 0
	}
	return *m.CO2Value
}
