package mapsync

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultPinColor is used for vehicles with no known defect or a defect whose
// label has no mapping.
const DefaultPinColor = "#888888"

// defaultLabelColors is the built-in defect label to marker color table.
var defaultLabelColors = map[string]string{
	"ABERTO: GEOMETRIA":         "#E74C3C",
	"ABERTO: RUIDO":             "#F39C12",
	"DEFEITO ABERTO RUÍDOS":     "#F39C12",
	"ABERTO: DEF ELETRICO":      "#F1C40F",
	"DEFEITO ABERTO ELÉTRICO":   "#F1C40F",
	"ABERTO: ESTANQUEIDADE":     "#3498DB",
	"ABERTO: DEF MECANICO":      "#9B59B6",
	"ABERTO: DEGRADAÇÃO":        "#1ABC9C",
	"ABERTO: ENCHIMENTO":        "#2ECC71",
	"ABERTO: ASPECTO":           "#E67E22",
	"ABERTO: DEF FUNCIONAMENTO": "#D35400",
	"ABERTO: DEFEITO GSAO":      "#7F8C8D",
	"DEFEITO ABERTO S.A.O":      "#7F8C8D",
	"DEFEITO ABERTO: SAO":       "#7F8C8D",
}

// ColorMap resolves defect labels to marker colors. The table can be replaced
// at runtime (config hot reload), so lookups are guarded.
type ColorMap struct {
	mu     sync.RWMutex
	colors map[string]string
}

// NewColorMap returns a ColorMap seeded with the built-in table.
func NewColorMap() *ColorMap {
	return &ColorMap{colors: defaultLabelColors}
}

// Lookup returns the color for a defect label, or DefaultPinColor when the
// label is empty or unmapped.
func (c *ColorMap) Lookup(label string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if color, ok := c.colors[label]; ok {
		return color
	}
	return DefaultPinColor
}

// LoadFile replaces the table with the label to color mapping read from a
// YAML file.
func (c *ColorMap) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read color map: %w", err)
	}

	colors := map[string]string{}
	if err := yaml.Unmarshal(data, &colors); err != nil {
		return fmt.Errorf("failed to parse color map: %w", err)
	}

	c.mu.Lock()
	c.colors = colors
	c.mu.Unlock()
	return nil
}
