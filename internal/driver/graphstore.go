package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/flowalign/internal/core/model"
)

// GraphStore keeps canonical graphs and alignment rows in Memgraph.
type GraphStore struct {
	driver GraphDriver
}

func NewGraphStore(d GraphDriver) *GraphStore {
	return &GraphStore{driver: d}
}

func (s *GraphStore) CanonicalNodes(ctx context.Context, collectionID string) ([]model.CanonicalFlowNode, error) {
	res, err := s.driver.ExecuteQuery(ctx, GetCanonicalNodesQuery, map[string]interface{}{
		"collection_id": collectionID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.CanonicalFlowNode, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, model.CanonicalFlowNode{
			ID:           getString(rec, "id"),
			CollectionID: collectionID,
			Label:        getString(rec, "label"),
			Type:         getString(rec, "type"),
			Icon:         getString(rec, "icon"),
			Content:      getString(rec, "content"),
			SupportCount: getInt(rec, "support_count"),
			Confidence:   getFloat(rec, "confidence"),
		})
	}
	return out, nil
}

func (s *GraphStore) CanonicalEdges(ctx context.Context, collectionID string) ([]model.CanonicalFlowEdge, error) {
	res, err := s.driver.ExecuteQuery(ctx, GetCanonicalEdgesQuery, map[string]interface{}{
		"collection_id": collectionID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.CanonicalFlowEdge, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, model.CanonicalFlowEdge{
			CollectionID:   collectionID,
			FromNodeID:     getString(rec, "from_node_id"),
			ToNodeID:       getString(rec, "to_node_id"),
			Reason:         getString(rec, "reason"),
			SupportCount:   getInt(rec, "support_count"),
			TransitionRate: getFloat(rec, "transition_rate"),
		})
	}
	return out, nil
}

func (s *GraphStore) CountCanonicalNodes(ctx context.Context, collectionID string) (int, error) {
	res, err := s.driver.ExecuteQuery(ctx, CountCanonicalNodesQuery, map[string]interface{}{
		"collection_id": collectionID,
	})
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return getInt(res.Records[0], "count"), nil
}

func (s *GraphStore) ReplaceCanonicalGraph(ctx context.Context, collectionID string, nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) error {
	statements := []Statement{{
		Query:  DeleteCanonicalGraphQuery,
		Params: map[string]interface{}{"collection_id": collectionID},
	}}

	if len(nodes) > 0 {
		rows := make([]map[string]interface{}, len(nodes))
		for i, n := range nodes {
			rows[i] = map[string]interface{}{
				"id":            n.ID,
				"ordinal":       i,
				"label":         n.Label,
				"type":          n.Type,
				"icon":          n.Icon,
				"content":       n.Content,
				"support_count": n.SupportCount,
				"confidence":    n.Confidence,
			}
		}
		statements = append(statements, Statement{
			Query:  CreateCanonicalNodesQuery,
			Params: map[string]interface{}{"collection_id": collectionID, "nodes": rows},
		})
	}

	if len(edges) > 0 {
		rows := make([]map[string]interface{}, len(edges))
		for i, e := range edges {
			rows[i] = map[string]interface{}{
				"from_node_id":    e.FromNodeID,
				"to_node_id":      e.ToNodeID,
				"ordinal":         i,
				"reason":          e.Reason,
				"support_count":   e.SupportCount,
				"transition_rate": e.TransitionRate,
			}
		}
		statements = append(statements, Statement{
			Query:  CreateCanonicalEdgesQuery,
			Params: map[string]interface{}{"collection_id": collectionID, "edges": rows},
		})
	}

	if err := s.driver.ExecuteWrite(ctx, statements); err != nil {
		return fmt.Errorf("failed to replace canonical graph for %s: %w", collectionID, err)
	}
	return nil
}

func (s *GraphStore) Alignments(ctx context.Context, projectID, collectionID string) ([]model.PromptFlowAlignment, error) {
	res, err := s.driver.ExecuteQuery(ctx, GetAlignmentsQuery, map[string]interface{}{
		"project_id":    projectID,
		"collection_id": collectionID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.PromptFlowAlignment, 0, len(res.Records))
	for _, rec := range res.Records {
		createdAt, _ := time.Parse(time.RFC3339Nano, getString(rec, "created_at"))
		out = append(out, model.PromptFlowAlignment{
			ID:              getString(rec, "id"),
			ProjectID:       projectID,
			CollectionID:    collectionID,
			PromptNodeID:    getString(rec, "prompt_node_id"),
			CanonicalNodeID: getString(rec, "canonical_node_id"),
			Score:           getFloat(rec, "score"),
			Reason:          getString(rec, "reason"),
			CreatedAt:       createdAt,
		})
	}
	return out, nil
}

func (s *GraphStore) ReplaceAlignments(ctx context.Context, projectID, collectionID string, rows []model.PromptFlowAlignment) error {
	scope := map[string]interface{}{"project_id": projectID, "collection_id": collectionID}
	statements := []Statement{{Query: DeleteAlignmentsQuery, Params: scope}}

	if len(rows) > 0 {
		params := make([]map[string]interface{}, len(rows))
		for i, r := range rows {
			params[i] = map[string]interface{}{
				"id":                r.ID,
				"prompt_node_id":    r.PromptNodeID,
				"canonical_node_id": r.CanonicalNodeID,
				"score":             r.Score,
				"reason":            r.Reason,
				"created_at":        r.CreatedAt.UTC().Format(time.RFC3339Nano),
			}
		}
		statements = append(statements, Statement{
			Query: CreateAlignmentsQuery,
			Params: map[string]interface{}{
				"project_id":    projectID,
				"collection_id": collectionID,
				"rows":          params,
			},
		})
	}

	if err := s.driver.ExecuteWrite(ctx, statements); err != nil {
		return fmt.Errorf("failed to replace alignments for %s/%s: %w", projectID, collectionID, err)
	}
	return nil
}

func getString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func getInt(rec *neo4j.Record, key string) int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func getFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
