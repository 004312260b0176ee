package provision

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestSimilarToolName finds the most similar tool name for typo detection using Levenshtein distance
func SuggestSimilarToolName(specs []ToolSpec, name string) string {
	if len(specs) == 0 {
		return ""
	}

	var bestTool string
	bestDistance := 3 // Only consider distances <= 2

	nameLower := strings.ToLower(name)

	for _, spec := range specs {
		specNameLower := strings.ToLower(spec.Name)
		distance := levenshtein.ComputeDistance(nameLower, specNameLower)
		if distance < bestDistance {
			bestDistance = distance
			bestTool = spec.Name
		}
	}

	return bestTool
}
