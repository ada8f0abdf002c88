package community

import (
	"github.com/agenthands/flowalign/internal/core/model"
)

// Detector groups canonical nodes into phases of a conversation.
type Detector interface {
	Detect(nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) ([][]model.CanonicalFlowNode, error)
}

func NewDetector() Detector {
	return NewLabelPropagationDetector()
}
