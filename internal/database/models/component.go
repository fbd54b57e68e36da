package models

// ConnectionType enumerates how a component attaches to its parent
type ConnectionType string

const (
	ConnectionTypeScrewed ConnectionType = "screwed"
	ConnectionTypeGlued   ConnectionType = "glued"
	ConnectionTypeWelded  ConnectionType = "welded"
	ConnectionTypeClipped ConnectionType = "clipped"
	ConnectionTypeUnknown ConnectionType = "unknown"
)

// Component represents an assembled part arranged in a hierarchy. Every
// component references a material in the same project; a nil ParentID marks
// a root. Ebene is the stored hierarchy level, kept as given rather than
// derived from the parent chain.
//
// ConnectionType and Weight were added after the initial release and follow
// the same additive-evolution rule as Material.CO2Value.
type Component struct {
	ID             uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string          `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Ebene          int             `json:"ebene" gorm:"not null;default:0" validate:"gte=0"`
	MaterialID     uint            `json:"material_id" gorm:"not null;index" validate:"required"`
	ParentID       *uint           `json:"parent_id,omitempty" gorm:"index"`
	ConnectionType *ConnectionType `json:"connection_type,omitempty" gorm:"type:varchar(50)" validate:"omitempty,oneof=screwed glued welded clipped unknown"`
	Weight         *float64        `json:"weight,omitempty" validate:"omitempty,gte=0"`
}

// TableName returns the table name for Component
func (Component) TableName() string {
	return "components"
}

// IsRoot returns true if the component has no parent
func (c *Component) IsRoot() bool {
	return c.ParentID == nil
}
