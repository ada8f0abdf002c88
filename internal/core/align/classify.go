package align

import (
	"fmt"
	"strings"

	"github.com/agenthands/flowalign/internal/core/model"
)

const NoCandidatesReason = "no candidates available"

// Classify turns the best match of a prompt node into an alignment item.
// match is nil when the canonical graph had no candidates.
func (c Config) Classify(p model.PromptNode, match *Match) model.AlignmentItem {
	item := model.AlignmentItem{
		PromptNodeID: p.ID,
		PromptLabel:  p.Label,
		PromptType:   p.Type,
		Status:       model.StatusUncovered,
	}
	if match == nil {
		item.Reason = NoCandidatesReason
		return item
	}

	item.Confidence = match.Score
	item.CanonicalNodeID = match.Node.ID
	item.CanonicalLabel = match.Node.Label
	item.Breakdown = match.Breakdown

	switch {
	case match.Score < c.Floor:
		item.Reason = fmt.Sprintf("weak match %.2f with %q (floor %.2f)", match.Score, match.Node.Label, c.Floor)
	case match.Score >= c.CoveredThreshold:
		item.Status = model.StatusCovered
		item.Reason = diagnostic(match)
	default:
		item.Status = model.StatusOverconstrained
		item.Reason = diagnostic(match)
	}
	return item
}

func diagnostic(m *Match) string {
	return strings.Join([]string{
		fmt.Sprintf("matched %q", m.Node.Label),
		fmt.Sprintf("token %s", pct(m.Breakdown.Token)),
		fmt.Sprintf("label %s", pct(m.Breakdown.Label)),
		fmt.Sprintf("type %s", pct(m.Breakdown.Type)),
		fmt.Sprintf("support %s", pct(m.Breakdown.Support)),
	}, " | ")
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
