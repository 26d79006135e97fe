package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_BuiltinFormats(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"dot", "gml", "graphml", "json"}, r.Formats())

	for _, name := range r.Formats() {
		s, err := r.Serializer(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
}

func TestRegistry_UnknownFormat(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Serializer("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot, gml, graphml, json")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register("gml", &GMLSerializer{})
	r.Register("gml", &DOTSerializer{})

	s, err := r.Serializer("gml")
	require.NoError(t, err)
	assert.IsType(t, &DOTSerializer{}, s)
}

func TestRegistry_EmptyAvailableFormats(t *testing.T) {
	assert.Equal(t, "none", NewRegistry().AvailableFormats())
}
