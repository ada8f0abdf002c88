// Package canonical reduces per-transcript flow graphs into one canonical
// flow graph by frequency voting.
package canonical

import (
	"fmt"

	"github.com/agenthands/flowalign/internal/core/fingerprint"
	"github.com/agenthands/flowalign/internal/core/model"
)

// Stats reports how much of the input was usable.
type Stats struct {
	Flows              int
	SkippedNodes       int
	SkippedConnections int
}

type nodeBucket struct {
	id       string
	typ      string
	icon     string
	labels   *counter
	contents *counter
	flows    map[string]struct{}
}

type edgeBucket struct {
	from    string
	to      string
	support int
	reasons *counter
}

type accumulator struct {
	nodes     map[string]*nodeBucket
	nodeOrder []string
	edges     map[string]*edgeBucket
	edgeOrder []string
	stats     Stats
}

// Build aggregates flows into a canonical graph. It is deterministic: the same
// flows in the same order always give the same nodes, edges and ordering.
func Build(collectionID string, flows []model.TranscriptFlow) (model.CanonicalGraph, Stats) {
	acc := &accumulator{
		nodes: make(map[string]*nodeBucket),
		edges: make(map[string]*edgeBucket),
	}
	for i, flow := range flows {
		acc.addFlow(flowKey(flow, i), flow)
	}
	acc.stats.Flows = len(flows)

	graph := model.CanonicalGraph{
		CollectionID: collectionID,
		FlowCount:    len(flows),
		Nodes:        make([]model.CanonicalFlowNode, 0, len(acc.nodeOrder)),
		Edges:        make([]model.CanonicalFlowEdge, 0, len(acc.edgeOrder)),
	}
	for _, id := range acc.nodeOrder {
		b := acc.nodes[id]
		support := len(b.flows)
		graph.Nodes = append(graph.Nodes, model.CanonicalFlowNode{
			ID:           b.id,
			CollectionID: collectionID,
			Label:        b.labels.top(),
			Type:         b.typ,
			Icon:         b.icon,
			Content:      b.contents.top(),
			SupportCount: support,
			Confidence:   rate(support, len(flows)),
		})
	}
	for _, key := range acc.edgeOrder {
		b := acc.edges[key]
		graph.Edges = append(graph.Edges, model.CanonicalFlowEdge{
			CollectionID:   collectionID,
			FromNodeID:     b.from,
			ToNodeID:       b.to,
			Reason:         b.reasons.top(),
			SupportCount:   b.support,
			TransitionRate: rate(b.support, len(flows)),
		})
	}
	return graph, acc.stats
}

func (a *accumulator) addFlow(flowID string, flow model.TranscriptFlow) {
	local := make(map[string]string, len(flow.Nodes))

	for _, raw := range flow.Nodes {
		n, ok := parseNode(raw)
		if !ok {
			a.stats.SkippedNodes++
			continue
		}
		canonID := fingerprint.CanonicalNodeID(n.typ, n.label)
		local[n.id] = canonID

		b, ok := a.nodes[canonID]
		if !ok {
			b = &nodeBucket{
				id:       canonID,
				labels:   newCounter(),
				contents: newCounter(),
				flows:    make(map[string]struct{}),
			}
			a.nodes[canonID] = b
			a.nodeOrder = append(a.nodeOrder, canonID)
		}
		if b.typ == "" {
			b.typ = n.typ
		}
		if b.icon == "" {
			b.icon = n.icon
		}
		b.labels.add(n.label)
		b.contents.add(n.content)
		b.flows[flowID] = struct{}{}
	}

	for _, raw := range flow.Connections {
		c, ok := parseConnection(raw)
		if !ok {
			a.stats.SkippedConnections++
			continue
		}
		from, okFrom := local[c.from]
		to, okTo := local[c.to]
		if !okFrom || !okTo || from == to {
			a.stats.SkippedConnections++
			continue
		}
		key := from + "->" + to
		b, ok := a.edges[key]
		if !ok {
			b = &edgeBucket{from: from, to: to, reasons: newCounter()}
			a.edges[key] = b
			a.edgeOrder = append(a.edgeOrder, key)
		}
		b.support++
		if c.reason != "" {
			b.reasons.add(c.reason)
		}
	}
}

func flowKey(flow model.TranscriptFlow, index int) string {
	if flow.ID != "" {
		return flow.ID
	}
	return fmt.Sprintf("%s#%d", flow.TranscriptID, index)
}

func rate(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(n) / float64(total)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}
