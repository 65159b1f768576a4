package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantString(t *testing.T) {
	v := Variant{"weight": "i32", "graph": "SimpleGraph"}
	assert.Equal(t, "{graph=SimpleGraph, weight=i32}", v.String())
	assert.Equal(t, "{}", Variant(nil).String())
	assert.Equal(t, []string{"graph", "weight"}, v.Keys())
}

func TestVariantWithAndClone(t *testing.T) {
	base := Variant{"graph": "UnitDiskGraph", "weight": "i32"}
	cast := base.With(Variant{"graph": "SimpleGraph"})

	assert.Equal(t, Variant{"graph": "SimpleGraph", "weight": "i32"}, cast)
	assert.Equal(t, "UnitDiskGraph", base["graph"], "With must not mutate the receiver")

	clone := base.Clone()
	clone["graph"] = "PlanarGraph"
	assert.Equal(t, "UnitDiskGraph", base["graph"])

	assert.NotNil(t, Variant(nil).Clone())
}

func TestVariantEqual(t *testing.T) {
	assert.True(t, Variant(nil).Equal(Variant{}))
	assert.True(t, Variant{"k": "K3"}.Equal(Variant{"k": "K3"}))
	assert.False(t, Variant{"k": "K3"}.Equal(Variant{"k": "K2"}))
	assert.False(t, Variant{"k": "K3"}.Equal(Variant{"k": "K3", "weight": "i32"}))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("graph=UnitDiskGraph, weight = i32")
	require.NoError(t, err)
	assert.Equal(t, Variant{"graph": "UnitDiskGraph", "weight": "i32"}, v)

	empty, err := ParseVariant(" ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"graph", "graph=", "=x", "k=K2,k=K3"} {
		_, err := ParseVariant(bad)
		assert.Error(t, err, bad)
	}
}
