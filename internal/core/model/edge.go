package model

// CanonicalFlowEdge is a vote-aggregated transition between two canonical nodes.
type CanonicalFlowEdge struct {
	CollectionID   string  `json:"collection_id"`
	FromNodeID     string  `json:"from_node_id"`
	ToNodeID       string  `json:"to_node_id"`
	Reason         string  `json:"reason"`
	SupportCount   int     `json:"support_count"`
	TransitionRate float64 `json:"transition_rate"`
}

// CanonicalGraph is the full canonical node/edge set of a collection.
// FlowCount is only known right after a build.
type CanonicalGraph struct {
	CollectionID string              `json:"collection_id"`
	FlowCount    int                 `json:"flow_count,omitempty"`
	Nodes        []CanonicalFlowNode `json:"nodes"`
	Edges        []CanonicalFlowEdge `json:"edges"`
}
