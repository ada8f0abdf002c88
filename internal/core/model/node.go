package model

// Transcript places a transcript inside a transcript collection.
type Transcript struct {
	ID           string `json:"id" yaml:"id"`
	CollectionID string `json:"collection_id" yaml:"collection_id"`
}

// TranscriptFlow is the flow graph extracted from a single transcript.
// Nodes and Connections are kept untyped: they come from an extractor we do
// not control and are parsed defensively by the canonical builder.
type TranscriptFlow struct {
	ID           string `json:"id" yaml:"id"`
	TranscriptID string `json:"transcript_id" yaml:"transcript_id"`
	Nodes        []any  `json:"nodes" yaml:"nodes"`
	Connections  []any  `json:"connections" yaml:"connections"`
}

// CanonicalFlowNode is one vote-aggregated conversational step of a collection.
type CanonicalFlowNode struct {
	ID           string  `json:"id"`
	CollectionID string  `json:"collection_id"`
	Label        string  `json:"label"`
	Type         string  `json:"type"`
	Icon         string  `json:"icon"`
	Content      string  `json:"content"`
	SupportCount int     `json:"support_count"`
	Confidence   float64 `json:"confidence"` // fraction of flows that voted for the node
}

// PromptNode is a node of the authored prompt graph.
type PromptNode struct {
	ID        string `json:"id" yaml:"id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
	Type      string `json:"type" yaml:"type"`
	Label     string `json:"label" yaml:"label"`
	Content   string `json:"content" yaml:"content"`
	Position  int    `json:"position" yaml:"position"`
}

// Phase is a cluster of canonical nodes that are densely connected by transitions.
type Phase struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	NodeIDs []string `json:"node_ids"`
	Support int      `json:"support"`
}
