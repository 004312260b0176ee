package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSuggestSimilarToolName tests typo suggestions
func TestSuggestSimilarToolName(t *testing.T) {
	specs := []ToolSpec{
		{Name: "umoci"},
		{Name: "opm"},
	}

	assert.Equal(t, "umoci", SuggestSimilarToolName(specs, "umocy"))
	assert.Equal(t, "opm", SuggestSimilarToolName(specs, "pom"))
	assert.Equal(t, "umoci", SuggestSimilarToolName(specs, "UMOCI"))
	assert.Empty(t, SuggestSimilarToolName(specs, "kubectl"), "distant names get no suggestion")
	assert.Empty(t, SuggestSimilarToolName(nil, "umoci"))
}
