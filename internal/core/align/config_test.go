package align

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/flowalign/internal/config"
)

func TestFromConfigDefaultsMatch(t *testing.T) {
	got := FromConfig(config.Default().Alignment)
	assert.Equal(t, DefaultConfig(), got)
}

func TestFromConfigOverrides(t *testing.T) {
	got := FromConfig(config.AlignmentConfig{
		CoveredThreshold: 0.7,
		Floor:            0.4,
		TokenWeight:      1,
		StopWords:        []string{"please"},
	})
	assert.Equal(t, 0.7, got.CoveredThreshold)
	assert.Equal(t, 0.4, got.Floor)
	assert.Equal(t, Weights{Token: 1}, got.Weights)
	assert.Equal(t, []string{"please"}, got.StopWords)
	assert.NotEmpty(t, got.TypeFamilies)
}
