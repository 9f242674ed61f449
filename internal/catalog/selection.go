package catalog

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	selectedAlpha   = 0.8
	unselectedAlpha = 0.2
)

// Selection is the caller-owned filter state of one dashboard view: the chosen
// categories and the scatter points picked by the user. Empty means everything.
type Selection struct {
	Categories []string
	Points     map[string]bool
}

// NewSelection builds a Selection from point keys ("<emission>-<weight>").
func NewSelection(categories, points []string) Selection {
	sel := Selection{Categories: categories}
	if len(points) > 0 {
		sel.Points = make(map[string]bool, len(points))
		for _, p := range points {
			sel.Points[p] = true
		}
	}
	return sel
}

// Point is one scatter marker: emission on x, weight on y, sized by price.
type Point struct {
	Product
	Selected bool   `json:"selected"`
	Color    string `json:"color"`
}

// ApplySelection marks selected products and colours them by category.
// Unselected products keep their category colour at a lower opacity.
func ApplySelection(products []Product, sel Selection) []Point {
	palette := CategoryColors(categoriesOf(products))

	points := make([]Point, 0, len(products))
	for _, p := range products {
		selected := len(sel.Points) == 0 || sel.Points[p.PointKey()]
		alpha := unselectedAlpha
		if selected {
			alpha = selectedAlpha
		}
		points = append(points, Point{
			Product:  p,
			Selected: selected,
			Color:    rgba(palette[p.Category], alpha),
		})
	}
	return points
}

// CategoryColors spreads the categories evenly around the hue circle.
func CategoryColors(categories []string) map[string]colorful.Color {
	out := make(map[string]colorful.Color, len(categories))
	n := len(categories)
	for i, c := range categories {
		hue := float64(i) / float64(n) * 360
		out[c] = colorful.Hsv(hue, 0.7, 0.9)
	}
	return out
}

// Legend returns "rgba(...)" colours of every category at full selection opacity.
func Legend(categories []string) map[string]string {
	palette := CategoryColors(categories)
	out := make(map[string]string, len(palette))
	for c, col := range palette {
		out[c] = rgba(col, selectedAlpha)
	}
	return out
}

func rgba(c colorful.Color, alpha float64) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %.1f)", r, g, b, alpha)
}

// categoriesOf returns the distinct categories in first-seen order.
func categoriesOf(products []Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Bar is one entry of the category comparison chart.
type Bar struct {
	Product
	Label string `json:"label"` // "Your Product" or "Other Product"
}

// Comparison orders the selected product and its category peers by emission,
// ascending, tagging the selected one. Duplicate rows are dropped.
func Comparison(selected Product, peers []Product) []Bar {
	type key struct {
		name, category            string
		price, emission, comp, wg float64
	}
	keyOf := func(p Product) key {
		return key{p.Name, p.Category, p.Price, p.Emission, p.CompensationPrice, p.WeightGram}
	}

	seen := map[key]bool{keyOf(selected): true}
	bars := []Bar{{Product: selected, Label: "Your Product"}}
	for _, p := range peers {
		k := keyOf(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		bars = append(bars, Bar{Product: p, Label: "Other Product"})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Emission < bars[j].Emission
	})
	return bars
}
