// Package align scores prompt nodes against canonical flow nodes and turns
// the best matches into coverage classifications.
package align

import (
	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core/textnorm"
)

const (
	DefaultCoveredThreshold = 0.58
	DefaultFloor            = 0.35
)

type Weights struct {
	Token   float64
	Label   float64
	Type    float64
	Support float64
}

// Config carries every tunable used by scoring and classification.
// Floor is both the "real candidate" cutoff and the persistence cutoff.
type Config struct {
	CoveredThreshold float64
	Floor            float64
	Weights          Weights
	StopWords        []string
	TypeFamilies     map[string]string
}

func DefaultConfig() Config {
	return Config{
		CoveredThreshold: DefaultCoveredThreshold,
		Floor:            DefaultFloor,
		Weights: Weights{
			Token:   0.56,
			Label:   0.22,
			Type:    0.17,
			Support: 0.05,
		},
		StopWords:    textnorm.DefaultStopWords(),
		TypeFamilies: DefaultTypeFamilies(),
	}
}

// FromConfig maps the [alignment] section onto a Config. An empty stop word
// list keeps the defaults.
func FromConfig(c config.AlignmentConfig) Config {
	cfg := DefaultConfig()
	cfg.CoveredThreshold = c.CoveredThreshold
	cfg.Floor = c.Floor
	cfg.Weights = Weights{
		Token:   c.TokenWeight,
		Label:   c.LabelWeight,
		Type:    c.TypeWeight,
		Support: c.SupportWeight,
	}
	if len(c.StopWords) > 0 {
		cfg.StopWords = c.StopWords
	}
	return cfg
}
