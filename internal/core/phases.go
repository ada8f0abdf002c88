package core

import (
	"context"
	"strings"

	"github.com/agenthands/flowalign/internal/core/fingerprint"
	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/core/summary"
)

const phasePrefix = "phase_"

// Phases clusters the canonical graph of a collection into densely connected
// groups of steps. Groups are named by the Namer when one is set, falling
// back to the label of the best supported member.
func (e *Engine) Phases(ctx context.Context, collectionID string) ([]model.Phase, error) {
	graph, err := e.CanonicalGraph(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	groups, err := e.Detector.Detect(graph.Nodes, graph.Edges)
	if err != nil {
		return nil, err
	}

	phases := make([]model.Phase, 0, len(groups))
	for _, g := range groups {
		ids := make([]string, len(g))
		support := 0
		for i, n := range g {
			ids[i] = n.ID
			support += n.SupportCount
		}

		name := summary.FallbackName(g)
		if e.Namer != nil {
			if named, err := e.Namer.NamePhase(ctx, g); err != nil {
				e.Log.Warn("phase naming failed, using fallback", "collection_id", collectionID, "error", err)
			} else {
				name = named
			}
		}

		phases = append(phases, model.Phase{
			ID:      phasePrefix + fingerprint.Encode(strings.Join(ids, ",")),
			Name:    name,
			NodeIDs: ids,
			Support: support,
		})
	}
	return phases, nil
}
