package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luoweipeter/coffea/internal/graph"
)

func testGraph() *graph.Graph {
	g := graph.New()
	g.AddNode("com.app.Foo", 400)
	g.AddNode("com.app.Bar", 100)
	g.AddExternalNode("java.lang.String")
	g.AddEdge("com.app.Foo", "com.app.Bar")
	g.AddEdge("com.app.Foo", "java.lang.String")

	return g
}

func TestRender_WritesHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.html")

	err := Render(testGraph(), Options{Title: "test graph"}, path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "com.app.Foo")
	assert.Contains(t, html, "java.lang.String")
	assert.Contains(t, html, "test graph")
	assert.Contains(t, html, "force")
}

func TestRenderTemp_CreatesFile(t *testing.T) {
	path, err := RenderTemp(testGraph(), Options{})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSymbolSize_Scaling(t *testing.T) {
	assert.Equal(t, minSymbolSize, symbolSize(0, 100))
	assert.Equal(t, minSymbolSize, symbolSize(50, 0))
	assert.Equal(t, maxSymbolSize, symbolSize(100, 100))

	mid := symbolSize(25, 100)
	assert.Greater(t, mid, minSymbolSize)
	assert.Less(t, mid, maxSymbolSize)
}

func TestSymbolSize_MonotonicInValue(t *testing.T) {
	prev := 0.0

	for _, v := range []int{1, 10, 50, 100} {
		size := symbolSize(v, 100)
		assert.Greater(t, size, prev)
		prev = size
	}
}
