package vm

import (
	"testing"

	"github.com/mna/catkin/lang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMetaclassNoBasesDefaultsToType(t *testing.T) {
	meta, err := resolveMetaclass(nil)
	require.NoError(t, err)
	assert.Same(t, values.TypeClass, meta)
}

func TestResolveMetaclassPlainBasesDefaultToType(t *testing.T) {
	a := values.NewClass("A", nil)
	b := values.NewClass("B", nil)
	meta, err := resolveMetaclass([]*values.Class{a, b})
	require.NoError(t, err)
	assert.Same(t, values.TypeClass, meta)
}

func TestResolveMetaclassPicksMostDerived(t *testing.T) {
	// Meta is a metaclass (instance of TypeClass, i.e. a subclass of it in
	// the class hierarchy sense that matters here: it IsSubclass(TypeClass)
	// because every class climbs to TypeClass as its ultimate ancestor).
	meta := values.NewClass("Meta", []*values.Class{values.TypeClass})
	plain := values.NewClass("Plain", nil) // Metaclass defaults to TypeClass

	withMeta := values.NewClassWithMetaclass("WithMeta", nil, meta)

	got, err := resolveMetaclass([]*values.Class{plain, withMeta})
	require.NoError(t, err)
	assert.Same(t, meta, got)
}

func TestResolveMetaclassConflictRaisesTypeError(t *testing.T) {
	// Two unrelated metaclasses, neither derived from the other: no single
	// most-derived metaclass exists.
	metaA := values.NewClass("MetaA", []*values.Class{values.TypeClass})
	metaB := values.NewClass("MetaB", []*values.Class{values.TypeClass})

	a := values.NewClassWithMetaclass("A", nil, metaA)
	b := values.NewClassWithMetaclass("B", nil, metaB)

	_, err := resolveMetaclass([]*values.Class{a, b})
	require.Error(t, err)

	exc, ok := err.(*values.Exception)
	require.True(t, ok, "expected *values.Exception, got %T", err)
	assert.Equal(t, "TypeError", exc.ClassName)
	assert.Contains(t, exc.Error(), "metaclass conflict")
}

func TestResolveMetaclassDerivedMetaclassResolvesConflict(t *testing.T) {
	// MetaAB derives from both metaA and metaB, so once it has become the
	// winner it absorbs both as bases without conflict. As in CPython's own
	// pairwise winnowing, this is order-sensitive: the most-derived
	// metaclass's base (c) must come before the plain metaA/metaB bases so
	// it becomes the winner before either of them is compared against it.
	metaA := values.NewClass("MetaA", []*values.Class{values.TypeClass})
	metaB := values.NewClass("MetaB", []*values.Class{values.TypeClass})
	metaAB := values.NewClass("MetaAB", []*values.Class{metaA, metaB})

	a := values.NewClassWithMetaclass("A", nil, metaA)
	b := values.NewClassWithMetaclass("B", nil, metaB)
	c := values.NewClassWithMetaclass("C", nil, metaAB)

	got, err := resolveMetaclass([]*values.Class{c, a, b})
	require.NoError(t, err)
	assert.Same(t, metaAB, got)
}
