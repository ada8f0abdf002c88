package sqlstore

import (
	"time"

	"gorm.io/datatypes"
)

type TranscriptRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	CollectionID string    `gorm:"column:collection_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (TranscriptRow) TableName() string { return "transcript" }

type FlowRow struct {
	ID           string         `gorm:"column:id;primaryKey"`
	TranscriptID string         `gorm:"column:transcript_id;not null;index"`
	Nodes        datatypes.JSON `gorm:"column:nodes"`
	Connections  datatypes.JSON `gorm:"column:connections"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

func (FlowRow) TableName() string { return "transcript_flow" }

type PromptNodeRow struct {
	ProjectID string `gorm:"column:project_id;primaryKey"`
	ID        string `gorm:"column:id;primaryKey"`
	Type      string `gorm:"column:type"`
	Label     string `gorm:"column:label"`
	Content   string `gorm:"column:content"`
	Position  int    `gorm:"column:position;not null;default:0"`
}

func (PromptNodeRow) TableName() string { return "prompt_node" }

type CanonicalNodeRow struct {
	CollectionID string  `gorm:"column:collection_id;primaryKey"`
	ID           string  `gorm:"column:id;primaryKey"`
	Ordinal      int     `gorm:"column:ordinal;not null"`
	Label        string  `gorm:"column:label;not null"`
	Type         string  `gorm:"column:type;not null"`
	Icon         string  `gorm:"column:icon"`
	Content      string  `gorm:"column:content"`
	SupportCount int     `gorm:"column:support_count;not null;default:0"`
	Confidence   float64 `gorm:"column:confidence;not null;default:0"`
}

func (CanonicalNodeRow) TableName() string { return "canonical_flow_node" }

type CanonicalEdgeRow struct {
	CollectionID   string  `gorm:"column:collection_id;primaryKey"`
	FromNodeID     string  `gorm:"column:from_node_id;primaryKey"`
	ToNodeID       string  `gorm:"column:to_node_id;primaryKey"`
	Ordinal        int     `gorm:"column:ordinal;not null"`
	Reason         string  `gorm:"column:reason"`
	SupportCount   int     `gorm:"column:support_count;not null;default:0"`
	TransitionRate float64 `gorm:"column:transition_rate;not null;default:0"`
}

func (CanonicalEdgeRow) TableName() string { return "canonical_flow_edge" }

type AlignmentRow struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ProjectID       string    `gorm:"column:project_id;not null;index:idx_alignment_scope"`
	CollectionID    string    `gorm:"column:collection_id;not null;index:idx_alignment_scope"`
	PromptNodeID    string    `gorm:"column:prompt_node_id;not null"`
	CanonicalNodeID string    `gorm:"column:canonical_node_id;not null"`
	Score           float64   `gorm:"column:score;not null"`
	Reason          string    `gorm:"column:reason"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (AlignmentRow) TableName() string { return "prompt_flow_alignment" }
