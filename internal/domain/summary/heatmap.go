package summary

import (
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// Heatmap counts risk colors per position group.
type Heatmap map[string]map[types.RiskColor]int

// BuildHeatmap counts the active roster. A missing color counts as GREEN.
func BuildHeatmap(roster []model.RosterPlayer) Heatmap {
	h := Heatmap{}
	for _, p := range model.Active(roster) {
		row, ok := h[p.PositionGroup]
		if !ok {
			row = map[types.RiskColor]int{types.ColorGreen: 0, types.ColorYellow: 0, types.ColorRed: 0}
			h[p.PositionGroup] = row
		}
		row[types.ParseRiskColor(string(p.RiskColor))]++
	}
	return h
}

// Count sums one color across groups.
func (h Heatmap) Count(c types.RiskColor) int {
	n := 0
	for _, row := range h {
		n += row[c]
	}
	return n
}
