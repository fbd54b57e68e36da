// Package transfer implements the CSV codec: a whole project store
// serialized into one flat tabular stream tagged by entity kind, and the
// atomic inverse.
package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"dimop-backend/internal/database/models"
	apperrors "dimop-backend/internal/errors"
	"dimop-backend/internal/store"

	"gorm.io/gorm"
)

// Discriminator values for the model column
const (
	ModelMaterial  = "material"
	ModelComponent = "component"
)

// Header lists every field of both entity kinds exactly once. Late-addition
// columns (co2_value, connection_type, weight) sit at the end; imports from
// exports predating them succeed with the fields defaulted.
var Header = []string{
	"model",
	"id",
	"name",
	"amount",
	"ebene",
	"material_id",
	"parent_id",
	"co2_value",
	"connection_type",
	"weight",
}

// MaterialRow is the tagged material variant of one CSV row
type MaterialRow struct {
	ID       uint
	Name     string
	Amount   float64
	CO2Value *float64
}

// ComponentRow is the tagged component variant of one CSV row. References
// use the exported (old) identifiers and are remapped on insert.
type ComponentRow struct {
	ID             uint
	Name           string
	Ebene          int
	MaterialID     uint
	ParentID       *uint
	ConnectionType *models.ConnectionType
	Weight         *float64
}

// Export writes the whole store as CSV: materials in id order, then
// components in id order, so output is deterministic for a given state.
func Export(st *store.Store, w io.Writer) error {
	materials, components, err := st.Snapshot()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range materials {
		row := emptyRow()
		row[0] = ModelMaterial
		row[1] = formatUint(m.ID)
		row[2] = m.Name
		row[3] = formatFloat(m.Amount)
		if m.CO2Value != nil {
			row[7] = formatFloat(*m.CO2Value)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write material row: %w", err)
		}
	}
	for _, c := range components {
		row := emptyRow()
		row[0] = ModelComponent
		row[1] = formatUint(c.ID)
		row[2] = c.Name
		row[4] = strconv.Itoa(c.Ebene)
		row[5] = formatUint(c.MaterialID)
		if c.ParentID != nil {
			row[6] = formatUint(*c.ParentID)
		}
		if c.ConnectionType != nil {
			row[8] = string(*c.ConnectionType)
		}
		if c.Weight != nil {
			row[9] = formatFloat(*c.Weight)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write component row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads a CSV stream produced by Export (of an equal or older schema
// version) and inserts all entities into the target store in one
// transaction. Identifiers are renumbered; all relationships are preserved
// under the renumbering. Any malformed row or unresolvable reference rolls
// the whole import back.
func Import(st *store.Store, r io.Reader) error {
	materials, components, err := parse(r)
	if err != nil {
		return err
	}

	return st.RunInTransaction(func(tx *gorm.DB) error {
		materialIDs := make(map[uint]uint, len(materials))
		for _, row := range materials {
			m := &models.Material{
				Name:     row.Name,
				Amount:   row.Amount,
				CO2Value: row.CO2Value,
			}
			if err := st.ValidateEntity(m); err != nil {
				return &apperrors.ImportError{Message: fmt.Sprintf("material %q: %v", row.Name, err)}
			}
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("insert material: %w", err)
			}
			if row.ID != 0 {
				materialIDs[row.ID] = m.ID
			}
		}
		return insertComponents(st, tx, components, materialIDs)
	})
}

// insertComponents inserts rows in passes, deferring rows whose parent has
// not been inserted yet. Rows are not required to be topologically sorted;
// forward references to later-in-stream ids resolve on a later pass.
func insertComponents(st *store.Store, tx *gorm.DB, rows []ComponentRow, materialIDs map[uint]uint) error {
	componentIDs := make(map[uint]uint, len(rows))
	pending := rows
	for len(pending) > 0 {
		var deferred []ComponentRow
		progress := false
		for _, row := range pending {
			if row.ParentID != nil {
				if _, ok := componentIDs[*row.ParentID]; !ok {
					deferred = append(deferred, row)
					continue
				}
			}
			newMaterialID, ok := materialIDs[row.MaterialID]
			if !ok {
				return &apperrors.ImportError{Message: fmt.Sprintf("component %q references unknown material %d", row.Name, row.MaterialID)}
			}
			c := &models.Component{
				Name:           row.Name,
				Ebene:          row.Ebene,
				MaterialID:     newMaterialID,
				ConnectionType: row.ConnectionType,
				Weight:         row.Weight,
			}
			if row.ParentID != nil {
				newParent := componentIDs[*row.ParentID]
				c.ParentID = &newParent
			}
			if err := st.ValidateEntity(c); err != nil {
				return &apperrors.ImportError{Message: fmt.Sprintf("component %q: %v", row.Name, err)}
			}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("insert component: %w", err)
			}
			if row.ID != 0 {
				componentIDs[row.ID] = c.ID
			}
			progress = true
		}
		if !progress {
			// Remaining rows reference parents that never appear in the
			// stream, or form a cycle among themselves.
			return &apperrors.ImportError{Message: fmt.Sprintf("component %q references unresolvable parent %d", pending[0].Name, *pending[0].ParentID)}
		}
		pending = deferred
	}
	return nil
}

func parse(r io.Reader) ([]MaterialRow, []ComponentRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, &apperrors.ImportError{Message: fmt.Sprintf("reading header: %v", err)}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"model", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, &apperrors.ImportError{Message: fmt.Sprintf("missing required column %q", required)}
		}
	}

	var materials []MaterialRow
	var components []ComponentRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, apperrors.NewImportError(line, "malformed row: %v", err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		switch field("model") {
		case ModelMaterial:
			row, err := parseMaterial(field, line)
			if err != nil {
				return nil, nil, err
			}
			materials = append(materials, *row)
		case ModelComponent:
			row, err := parseComponent(field, line)
			if err != nil {
				return nil, nil, err
			}
			components = append(components, *row)
		default:
			return nil, nil, apperrors.NewImportError(line, "unknown model %q", field("model"))
		}
	}
	return materials, components, nil
}

func parseMaterial(field func(string) string, line int) (*MaterialRow, error) {
	row := &MaterialRow{Name: field("name")}
	var err error
	if row.ID, err = parseUint(field("id")); err != nil {
		return nil, apperrors.NewImportError(line, "invalid id: %v", err)
	}
	if row.Amount, err = parseFloat(field("amount"), 0); err != nil {
		return nil, apperrors.NewImportError(line, "invalid amount: %v", err)
	}
	if row.CO2Value, err = parseOptionalFloat(field("co2_value")); err != nil {
		return nil, apperrors.NewImportError(line, "invalid co2_value: %v", err)
	}
	return row, nil
}

func parseComponent(field func(string) string, line int) (*ComponentRow, error) {
	row := &ComponentRow{Name: field("name")}
	var err error
	if row.ID, err = parseUint(field("id")); err != nil {
		return nil, apperrors.NewImportError(line, "invalid id: %v", err)
	}
	if row.Ebene, err = parseInt(field("ebene"), 0); err != nil {
		return nil, apperrors.NewImportError(line, "invalid ebene: %v", err)
	}
	if row.MaterialID, err = parseUint(field("material_id")); err != nil {
		return nil, apperrors.NewImportError(line, "invalid material_id: %v", err)
	}
	if row.MaterialID == 0 {
		return nil, apperrors.NewImportError(line, "component %q is missing material_id", row.Name)
	}
	parentID, err := parseUint(field("parent_id"))
	if err != nil {
		return nil, apperrors.NewImportError(line, "invalid parent_id: %v", err)
	}
	if parentID != 0 {
		row.ParentID = &parentID
	}
	if ct := field("connection_type"); ct != "" {
		t := models.ConnectionType(ct)
		row.ConnectionType = &t
	}
	if row.Weight, err = parseOptionalFloat(field("weight")); err != nil {
		return nil, apperrors.NewImportError(line, "invalid weight: %v", err)
	}
	return row, nil
}

func emptyRow() []string {
	return make([]string, len(Header))
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseUint(s string) (uint, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func parseFloat(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
