package align

import (
	"math"
	"strings"

	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/core/textnorm"
)

// Candidate is a canonical node with its comparison forms precomputed.
type Candidate struct {
	Node   model.CanonicalFlowNode
	tokens []string
	label  string
	words  []string
	typ    string
}

// Match is the best candidate found for a prompt node.
type Match struct {
	Node      model.CanonicalFlowNode
	Score     float64
	Breakdown model.ScoreBreakdown
}

type Scorer struct {
	cfg       Config
	tokenizer *textnorm.Tokenizer
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, tokenizer: textnorm.NewTokenizer(cfg.StopWords)}
}

// Prepare precomputes candidates, keeping the order of nodes.
func (s *Scorer) Prepare(nodes []model.CanonicalFlowNode) []Candidate {
	out := make([]Candidate, len(nodes))
	for i, n := range nodes {
		out[i] = Candidate{
			Node:   n,
			tokens: s.tokenizer.Tokens(n.Label, n.Content),
			label:  textnorm.Key(n.Label),
			words:  textnorm.Words(n.Label),
			typ:    typeKey(n.Type),
		}
	}
	return out
}

// Score compares one prompt node with one candidate.
func (s *Scorer) Score(p model.PromptNode, c Candidate) (float64, model.ScoreBreakdown) {
	b := model.ScoreBreakdown{
		Token:   Jaccard(s.tokenizer.Tokens(p.Label, p.Content), c.tokens),
		Label:   labelScore(textnorm.Key(p.Label), textnorm.Words(p.Label), c.label, c.words),
		Type:    s.typeScore(typeKey(p.Type), c.typ),
		Support: SupportScore(c.Node.SupportCount),
	}
	w := s.cfg.Weights
	score := w.Token*b.Token + w.Label*b.Label + w.Type*b.Type + w.Support*b.Support
	return clamp01(score), b
}

// BestMatch scans candidates in order; only a strictly greater score replaces
// the current best, so ties resolve to the earliest candidate.
func (s *Scorer) BestMatch(p model.PromptNode, candidates []Candidate) (Match, bool) {
	var best Match
	found := false
	for _, c := range candidates {
		score, breakdown := s.Score(p, c)
		if !found || score > best.Score {
			best = Match{Node: c.Node, Score: score, Breakdown: breakdown}
			found = true
		}
	}
	return best, found
}

// Jaccard is |a∩b| / |a∪b| over the distinct members of a and b, and 0 when
// either side is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func labelScore(a string, aWords []string, b string, bWords []string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.7
	}
	shared := 0
	set := make(map[string]struct{}, len(aWords))
	for _, w := range aWords {
		set[w] = struct{}{}
	}
	for _, w := range bWords {
		if _, ok := set[w]; ok {
			shared++
		}
	}
	larger := len(aWords)
	if len(bWords) > larger {
		larger = len(bWords)
	}
	return float64(shared) / float64(larger)
}

func (s *Scorer) typeScore(a, b string) float64 {
	if a == b {
		return 1
	}
	if s.cfg.family(a) == s.cfg.family(b) {
		return 0.65
	}
	return 0.15
}

// SupportScore rewards transcript evidence with diminishing returns.
func SupportScore(support int) float64 {
	if support < 0 {
		support = 0
	}
	return clamp01(math.Log2(float64(support)+1) / 4)
}

func typeKey(t string) string {
	if k := textnorm.Key(t); k != "" {
		return k
	}
	return "custom"
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
