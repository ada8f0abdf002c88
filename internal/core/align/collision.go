package align

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/flowalign/internal/core/model"
)

// ResolveCollisions lets at most one prompt node win each canonical node.
// Within a group of non-uncovered items sharing a canonical node, the most
// confident item keeps its status and the rest become overconstrained.
// items is modified in place and returned.
func ResolveCollisions(items []model.AlignmentItem) []model.AlignmentItem {
	groups := make(map[string][]int)
	var order []string
	for i, it := range items {
		if it.Status == model.StatusUncovered || it.CanonicalNodeID == "" {
			continue
		}
		if _, ok := groups[it.CanonicalNodeID]; !ok {
			order = append(order, it.CanonicalNodeID)
		}
		groups[it.CanonicalNodeID] = append(groups[it.CanonicalNodeID], i)
	}

	for _, canonID := range order {
		idx := groups[canonID]
		if len(idx) < 2 {
			continue
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return items[idx[a]].Confidence > items[idx[b]].Confidence
		})
		winner := items[idx[0]]
		for _, i := range idx[1:] {
			items[i].Status = model.StatusOverconstrained
			items[i].Reason += fmt.Sprintf(" | collision: canonical node %s already claimed by prompt node %s (%.2f)",
				canonID, winner.PromptNodeID, winner.Confidence)
		}
	}
	return items
}

// SortItems orders items uncovered, overconstrained, covered. Non-covered
// tiers sort by prompt label; covered items by descending confidence.
func SortItems(items []model.AlignmentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
			return ra < rb
		}
		if a.Status == model.StatusCovered {
			return a.Confidence > b.Confidence
		}
		return lowerLess(a.PromptLabel, b.PromptLabel)
	})
}

func lowerLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
