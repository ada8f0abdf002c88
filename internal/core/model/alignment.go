package model

import "time"

type CoverageStatus string

const (
	StatusCovered         CoverageStatus = "covered"
	StatusUncovered       CoverageStatus = "uncovered"
	StatusOverconstrained CoverageStatus = "overconstrained"
)

// Rank orders statuses for reports: uncovered first, covered last.
func (s CoverageStatus) Rank() int {
	switch s {
	case StatusUncovered:
		return 0
	case StatusOverconstrained:
		return 1
	default:
		return 2
	}
}

// ScoreBreakdown keeps the sub-scores that produced a match score.
type ScoreBreakdown struct {
	Token   float64 `json:"token"`
	Label   float64 `json:"label"`
	Type    float64 `json:"type"`
	Support float64 `json:"support"`
}

// AlignmentItem is the classification of one prompt node.
type AlignmentItem struct {
	PromptNodeID    string         `json:"prompt_node_id"`
	PromptLabel     string         `json:"prompt_label"`
	PromptType      string         `json:"prompt_type"`
	Status          CoverageStatus `json:"status"`
	Confidence      float64        `json:"confidence"`
	CanonicalNodeID string         `json:"canonical_node_id,omitempty"`
	CanonicalLabel  string         `json:"canonical_label,omitempty"`
	Reason          string         `json:"reason"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
}

type StatusCounts struct {
	Covered         int `json:"covered"`
	Uncovered       int `json:"uncovered"`
	Overconstrained int `json:"overconstrained"`
}

// AlignmentReport is the result of one alignment run.
type AlignmentReport struct {
	ProjectID          string          `json:"project_id"`
	CollectionID       string          `json:"collection_id"`
	Counts             StatusCounts    `json:"counts"`
	PromptNodeCount    int             `json:"prompt_node_count"`
	CanonicalNodeCount int             `json:"canonical_node_count"`
	PersistedCount     int             `json:"persisted_count"`
	DryRun             bool            `json:"dry_run"`
	Items              []AlignmentItem `json:"items"`
}

// PromptFlowAlignment is a persisted alignment row.
type PromptFlowAlignment struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	CollectionID    string    `json:"collection_id"`
	PromptNodeID    string    `json:"prompt_node_id"`
	CanonicalNodeID string    `json:"canonical_node_id"`
	Score           float64   `json:"score"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}
