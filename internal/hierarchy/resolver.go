// Package hierarchy computes and validates the parent-child component tree
// from the flat records of one project store.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"dimop-backend/internal/database/models"
	apperrors "dimop-backend/internal/errors"
)

// Resolver holds the parent->children adjacency for one project's components.
// It operates on a snapshot; callers rebuild it after mutations.
type Resolver struct {
	components map[uint]*models.Component
	materials  map[uint]bool
	children   map[uint][]uint
	order      []uint
}

// New builds a resolver from the full component set of a project and the set
// of material IDs existing in the same project.
func New(components []models.Component, materialIDs []uint) *Resolver {
	r := &Resolver{
		components: make(map[uint]*models.Component, len(components)),
		materials:  make(map[uint]bool, len(materialIDs)),
		children:   make(map[uint][]uint),
		order:      make([]uint, 0, len(components)),
	}
	for _, id := range materialIDs {
		r.materials[id] = true
	}
	for i := range components {
		c := &components[i]
		r.components[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	// Insertion order equals id order for autoincrement keys
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	for _, id := range r.order {
		c := r.components[id]
		if c.ParentID != nil {
			r.children[*c.ParentID] = append(r.children[*c.ParentID], c.ID)
		}
	}
	return r
}

// Get returns the component with the given id, if present
func (r *Resolver) Get(id uint) (*models.Component, bool) {
	c, ok := r.components[id]
	return c, ok
}

// Roots returns all components without a parent, in insertion order
func (r *Resolver) Roots() []models.Component {
	var roots []models.Component
	for _, id := range r.order {
		if c := r.components[id]; c.ParentID == nil {
			roots = append(roots, *c)
		}
	}
	return roots
}

// ChildrenOf returns the direct children of a component in insertion order
func (r *Resolver) ChildrenOf(id uint) []models.Component {
	ids := r.children[id]
	out := make([]models.Component, 0, len(ids))
	for _, cid := range ids {
		out = append(out, *r.components[cid])
	}
	return out
}

// HasChildren reports whether a component has any descendants. Callers use
// this to block or cascade deletes explicitly.
func (r *Resolver) HasChildren(id uint) bool {
	return len(r.children[id]) > 0
}

// Depth computes the distance from the component to its root by following
// parent links. It is independent of the stored Ebene value, so callers can
// detect divergence without the resolver rewriting anything.
func (r *Resolver) Depth(id uint) (int, error) {
	c, ok := r.components[id]
	if !ok {
		return 0, apperrors.NewNotFoundError("component", id)
	}
	depth := 0
	seen := map[uint]bool{c.ID: true}
	for c.ParentID != nil {
		parent, ok := r.components[*c.ParentID]
		if !ok {
			return 0, &apperrors.DanglingReferenceError{ID: c.ID, Field: "parent_id", Ref: *c.ParentID}
		}
		if seen[parent.ID] {
			return 0, &apperrors.CycleError{ID: id}
		}
		seen[parent.ID] = true
		depth++
		c = parent
	}
	return depth, nil
}

// Validate checks every component's references and the acyclicity of the
// parent relation. The first violation found is returned; stored data is
// never corrected.
func (r *Resolver) Validate() error {
	for _, id := range r.order {
		c := r.components[id]
		if !r.materials[c.MaterialID] {
			return &apperrors.DanglingReferenceError{ID: c.ID, Field: "material_id", Ref: c.MaterialID}
		}
		if c.ParentID != nil {
			if _, ok := r.components[*c.ParentID]; !ok {
				return &apperrors.DanglingReferenceError{ID: c.ID, Field: "parent_id", Ref: *c.ParentID}
			}
		}
	}
	for _, id := range r.order {
		if _, err := r.Depth(id); err != nil {
			return err
		}
	}
	return nil
}

// Subtree returns all descendants of a component in depth-first pre-order,
// excluding the component itself. The result is a fresh slice on every call,
// so iteration is finite and restartable.
func (r *Resolver) Subtree(id uint) ([]models.Component, error) {
	if _, ok := r.components[id]; !ok {
		return nil, apperrors.NewNotFoundError("component", id)
	}
	var out []models.Component
	seen := map[uint]bool{id: true}
	err := r.walk(id, seen, func(c *models.Component) {
		out = append(out, *c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) walk(id uint, seen map[uint]bool, visit func(*models.Component)) error {
	for _, cid := range r.children[id] {
		if seen[cid] {
			return &apperrors.CycleError{ID: cid}
		}
		seen[cid] = true
		visit(r.components[cid])
		if err := r.walk(cid, seen, visit); err != nil {
			return err
		}
	}
	return nil
}

// WouldCycle reports whether re-parenting the component under newParent
// would make it its own ancestor.
func (r *Resolver) WouldCycle(id uint, newParent uint) bool {
	if id == newParent {
		return true
	}
	cur, ok := r.components[newParent]
	if !ok {
		return false
	}
	seen := map[uint]bool{}
	for cur.ParentID != nil {
		if *cur.ParentID == id {
			return true
		}
		if seen[*cur.ParentID] {
			return true
		}
		seen[*cur.ParentID] = true
		next, ok := r.components[*cur.ParentID]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Node is one nested entry of the rendered component tree
type Node struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Ebene    int     `json:"ebene"`
	Depth    int     `json:"depth"`
	Children []*Node `json:"children"`
}

// Tree renders all roots with their nested descendants
func (r *Resolver) Tree() ([]*Node, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var nodes []*Node
	for _, root := range r.Roots() {
		n, err := r.TreeOf(root.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// TreeOf renders one component with its nested descendants
func (r *Resolver) TreeOf(id uint) (*Node, error) {
	c, ok := r.components[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("component", id)
	}
	depth, err := r.Depth(id)
	if err != nil {
		return nil, err
	}
	return r.buildNode(c, depth, map[uint]bool{id: true})
}

func (r *Resolver) buildNode(c *models.Component, depth int, seen map[uint]bool) (*Node, error) {
	node := &Node{
		ID:       c.ID,
		Name:     c.Name,
		Ebene:    c.Ebene,
		Depth:    depth,
		Children: []*Node{},
	}
	for _, cid := range r.children[c.ID] {
		if seen[cid] {
			return nil, &apperrors.CycleError{ID: cid}
		}
		seen[cid] = true
		child, err := r.buildNode(r.components[cid], depth+1, seen)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// DOT renders the component tree as graphviz source, one node per component
// and one edge per parent link.
func (r *Resolver) DOT() string {
	var b strings.Builder
	b.WriteString("digraph components {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, id := range r.order {
		c := r.components[id]
		fmt.Fprintf(&b, "  %d [label=%q shape=box style=rounded];\n", c.ID, fmt.Sprintf("%s (Ebene %d)", c.Name, c.Ebene))
	}
	for _, id := range r.order {
		c := r.components[id]
		if c.ParentID != nil {
			fmt.Fprintf(&b, "  %d -> %d;\n", *c.ParentID, c.ID)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
