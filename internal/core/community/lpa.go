package community

import (
	"sort"

	"github.com/agenthands/flowalign/internal/core/model"
)

// LabelPropagationDetector implements community detection using Label Propagation Algorithm (LPA).
// Transitions are treated as undirected and weighted by their support count.
type LabelPropagationDetector struct {
	MaxIterations int
	MinSize       int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
		MinSize:       2,
	}
}

func (d *LabelPropagationDetector) Detect(nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) ([][]model.CanonicalFlowNode, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	adj := make(map[string]map[string]int) // node -> neighbor -> weight
	index := make(map[string]int)

	for i, n := range nodes {
		index[n.ID] = i
		adj[n.ID] = make(map[string]int)
	}

	for _, e := range edges {
		if _, ok := index[e.FromNodeID]; !ok {
			continue
		}
		if _, ok := index[e.ToNodeID]; !ok {
			continue
		}
		if e.FromNodeID == e.ToNodeID {
			continue
		}
		w := e.SupportCount
		if w < 1 {
			w = 1
		}
		adj[e.FromNodeID][e.ToNodeID] += w
		adj[e.ToNodeID][e.FromNodeID] += w
	}

	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		labels[n.ID] = n.ID
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changeCount := 0

		for _, n := range nodes {
			u := n.ID
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			labelCounts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				label := labels[v]
				labelCounts[label] += weight
				if labelCounts[label] > maxCount {
					maxCount = labelCounts[label]
				}
			}

			// Keep the current label on a tie, otherwise take the
			// lexicographically largest so runs are reproducible.
			if labelCounts[labels[u]] == maxCount {
				continue
			}
			var candidates []string
			for label, count := range labelCounts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			labels[u] = candidates[len(candidates)-1]
			changeCount++
		}

		if changeCount == 0 {
			break
		}
	}

	// Group by label, ordering groups and members by first appearance.
	groupOf := make(map[string]int)
	var communities [][]model.CanonicalFlowNode
	for _, n := range nodes {
		label := labels[n.ID]
		gi, ok := groupOf[label]
		if !ok {
			gi = len(communities)
			groupOf[label] = gi
			communities = append(communities, nil)
		}
		communities[gi] = append(communities[gi], n)
	}

	out := communities[:0]
	for _, c := range communities {
		if len(c) >= d.MinSize {
			out = append(out, c)
		}
	}
	return out, nil
}
