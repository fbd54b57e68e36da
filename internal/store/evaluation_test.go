package store_test

import (
	"path/filepath"
	"testing"

	"dimop-backend/internal/database"
	apperrors "dimop-backend/internal/errors"
	"dimop-backend/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.OpenProject(filepath.Join(t.TempDir(), "project_1.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return store.New(1, db, validator.New())
}

func floatPtr(v float64) *float64 { return &v }

func TestEvaluateLeaf(t *testing.T) {
	st := newTestStore(t)
	material, err := st.CreateMaterial(store.MaterialInput{Name: "Steel", Amount: 10, CO2Value: floatPtr(2.0)})
	require.NoError(t, err)
	leaf, err := st.CreateComponent(store.ComponentInput{Name: "Bolt", MaterialID: material.ID, Weight: floatPtr(3.0)})
	require.NoError(t, err)

	eval, err := st.Evaluate(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, eval.EffectiveWeight)
	assert.Equal(t, 6.0, eval.TotalCO2)
	assert.Equal(t, 1, eval.LeafCount)
}

func TestEvaluateRollsUpChildWeights(t *testing.T) {
	st := newTestStore(t)
	material, err := st.CreateMaterial(store.MaterialInput{Name: "Steel", Amount: 10, CO2Value: floatPtr(1.0)})
	require.NoError(t, err)

	// The assembly has no stored weight; its effective weight is the sum of
	// its children's weights.
	parent, err := st.CreateComponent(store.ComponentInput{Name: "Assembly", MaterialID: material.ID})
	require.NoError(t, err)
	_, err = st.CreateComponent(store.ComponentInput{Name: "c1", Ebene: 1, MaterialID: material.ID, ParentID: &parent.ID, Weight: floatPtr(1.5)})
	require.NoError(t, err)
	_, err = st.CreateComponent(store.ComponentInput{Name: "c2", Ebene: 1, MaterialID: material.ID, ParentID: &parent.ID, Weight: floatPtr(2.5)})
	require.NoError(t, err)

	eval, err := st.Evaluate(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, eval.EffectiveWeight)
	assert.Equal(t, 4.0, eval.TotalCO2)
	assert.Equal(t, 2, eval.LeafCount)
}

func TestEvaluateLegacyMaterialDefaultsCO2ToZero(t *testing.T) {
	st := newTestStore(t)
	material, err := st.CreateMaterial(store.MaterialInput{Name: "Mystery", Amount: 1})
	require.NoError(t, err)
	leaf, err := st.CreateComponent(store.ComponentInput{Name: "Part", MaterialID: material.ID, Weight: floatPtr(9.0)})
	require.NoError(t, err)

	eval, err := st.Evaluate(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.0, eval.EffectiveWeight)
	assert.Equal(t, 0.0, eval.TotalCO2)
}

func TestEvaluateUnknownComponent(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Evaluate(123)
	assert.True(t, apperrors.IsNotFound(err))
}
