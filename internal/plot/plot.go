// Package plot renders a dependency graph as an interactive force-directed
// HTML chart and opens it in the default browser.
package plot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/browser"

	"github.com/luoweipeter/coffea/internal/graph"
)

// Symbol size bounds for sized plots.
const (
	minSymbolSize = 8.0
	maxSymbolSize = 48.0
)

// Category indexes for the two node classes in the chart legend.
const (
	categoryInternal = 0
	categoryExternal = 1
)

// Options configures the interactive plot.
type Options struct {
	// Title is shown above the chart.
	Title string

	// Metric selects the node sizing metric; SizeNone renders uniform
	// symbols.
	Metric graph.SizeMetric
}

// Render writes the interactive HTML chart for g to path.
func Render(g *graph.Graph, opt Options, path string) error {
	chart := buildChart(g, opt)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file %q: %w", path, err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("rendering plot: %w", err)
	}

	return nil
}

// RenderTemp writes the chart to a temporary HTML file and returns its path.
func RenderTemp(g *graph.Graph, opt Options) (string, error) {
	dir, err := os.MkdirTemp("", "coffea-plot-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}

	path := filepath.Join(dir, "dependencies.html")
	if err := Render(g, opt, path); err != nil {
		return "", err
	}

	return path, nil
}

// Open launches the default browser on the rendered chart.
func Open(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}

	return nil
}

// buildChart assembles the echarts graph series from g.
func buildChart(g *graph.Graph, opt Options) *charts.Graph {
	chart := charts.NewGraph()

	title := opt.Title
	if title == "" {
		title = "Dependency graph"
	}

	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "coffea",
			Width:     "1600px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	nodes := make([]opts.GraphNode, 0, g.NodeCount())
	maxValue := maxMetricValue(g, opt.Metric)

	for _, n := range g.Nodes() {
		category := categoryInternal
		if n.External {
			category = categoryExternal
		}

		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			Value:      float32(opt.Metric.Value(n)),
			Category:   category,
			SymbolSize: symbolSize(opt.Metric.Value(n), maxValue),
		})
	}

	links := make([]opts.GraphLink, 0, g.EdgeCount())

	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}

		links = append(links, opts.GraphLink{Source: e.Source, Target: e.Target})
	}

	chart.AddSeries("dependencies", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Roam:   opts.Bool(true),
			Force:  &opts.GraphForce{Repulsion: 120},
			Categories: []*opts.GraphCategory{
				{Name: "internal"},
				{Name: "external"},
			},
		}),
	)

	return chart
}

// maxMetricValue finds the largest metric value across nodes, for scaling.
func maxMetricValue(g *graph.Graph, metric graph.SizeMetric) int {
	maxV := 0

	for _, n := range g.Nodes() {
		if v := metric.Value(n); v > maxV {
			maxV = v
		}
	}

	return maxV
}

// symbolSize maps a metric value to a symbol diameter. Square-root scaling
// keeps large classes from dwarfing the rest of the chart.
func symbolSize(value, maxValue int) float64 {
	if maxValue <= 0 || value <= 0 {
		return minSymbolSize
	}

	scaled := math.Sqrt(float64(value)) / math.Sqrt(float64(maxValue))

	return minSymbolSize + scaled*(maxSymbolSize-minSymbolSize)
}
