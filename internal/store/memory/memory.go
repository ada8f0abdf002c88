// Package memory is an in-process store backend, optionally seeded from a
// YAML dataset file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/flowalign/internal/core/model"
)

// Dataset is the YAML layout accepted by LoadDataset.
type Dataset struct {
	Transcripts []model.Transcript     `yaml:"transcripts"`
	Flows       []model.TranscriptFlow `yaml:"flows"`
	PromptNodes []model.PromptNode     `yaml:"prompt_nodes"`
}

type alignmentKey struct {
	project    string
	collection string
}

type Store struct {
	mu          sync.RWMutex
	transcripts []model.Transcript
	flows       []model.TranscriptFlow
	prompts     map[string][]model.PromptNode
	nodes       map[string][]model.CanonicalFlowNode
	edges       map[string][]model.CanonicalFlowEdge
	alignments  map[alignmentKey][]model.PromptFlowAlignment
}

func New() *Store {
	return &Store{
		prompts:    make(map[string][]model.PromptNode),
		nodes:      make(map[string][]model.CanonicalFlowNode),
		edges:      make(map[string][]model.CanonicalFlowEdge),
		alignments: make(map[alignmentKey][]model.PromptFlowAlignment),
	}
}

// LoadDataset reads a YAML dataset into a new store.
func LoadDataset(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset '%s': %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return FromDataset(ds), nil
}

func FromDataset(ds Dataset) *Store {
	s := New()
	ctx := context.Background()
	for _, t := range ds.Transcripts {
		_ = s.AddTranscript(ctx, t)
	}
	for _, f := range ds.Flows {
		_ = s.SaveFlow(ctx, f)
	}
	byProject := make(map[string][]model.PromptNode)
	var order []string
	for _, p := range ds.PromptNodes {
		if _, ok := byProject[p.ProjectID]; !ok {
			order = append(order, p.ProjectID)
		}
		byProject[p.ProjectID] = append(byProject[p.ProjectID], p)
	}
	for _, project := range order {
		_ = s.ReplacePromptNodes(ctx, project, byProject[project])
	}
	return s
}

func (s *Store) TranscriptIDs(_ context.Context, collectionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, t := range s.transcripts {
		if t.CollectionID == collectionID {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func (s *Store) FlowsForTranscripts(_ context.Context, transcriptIDs []string) ([]model.TranscriptFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(transcriptIDs))
	for _, id := range transcriptIDs {
		wanted[id] = struct{}{}
	}
	var out []model.TranscriptFlow
	for _, f := range s.flows {
		if _, ok := wanted[f.TranscriptID]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Store) PromptNodes(_ context.Context, projectID string) ([]model.PromptNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PromptNode(nil), s.prompts[projectID]...), nil
}

func (s *Store) CanonicalNodes(_ context.Context, collectionID string) ([]model.CanonicalFlowNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CanonicalFlowNode(nil), s.nodes[collectionID]...), nil
}

func (s *Store) CanonicalEdges(_ context.Context, collectionID string) ([]model.CanonicalFlowEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CanonicalFlowEdge(nil), s.edges[collectionID]...), nil
}

func (s *Store) CountCanonicalNodes(_ context.Context, collectionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes[collectionID]), nil
}

func (s *Store) ReplaceCanonicalGraph(_ context.Context, collectionID string, nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, collectionID)
	delete(s.edges, collectionID)
	if len(nodes) > 0 {
		s.nodes[collectionID] = append([]model.CanonicalFlowNode(nil), nodes...)
	}
	if len(edges) > 0 {
		s.edges[collectionID] = append([]model.CanonicalFlowEdge(nil), edges...)
	}
	return nil
}

func (s *Store) Alignments(_ context.Context, projectID, collectionID string) ([]model.PromptFlowAlignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PromptFlowAlignment(nil), s.alignments[alignmentKey{projectID, collectionID}]...), nil
}

func (s *Store) ReplaceAlignments(_ context.Context, projectID, collectionID string, rows []model.PromptFlowAlignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := alignmentKey{projectID, collectionID}
	delete(s.alignments, key)
	if len(rows) > 0 {
		s.alignments[key] = append([]model.PromptFlowAlignment(nil), rows...)
	}
	return nil
}

func (s *Store) AddTranscript(_ context.Context, t model.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.transcripts {
		if existing.ID == t.ID {
			s.transcripts[i] = t
			return nil
		}
	}
	s.transcripts = append(s.transcripts, t)
	return nil
}

func (s *Store) SaveFlow(_ context.Context, flow model.TranscriptFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.flows {
		if flow.ID != "" && existing.ID == flow.ID {
			s.flows[i] = flow
			return nil
		}
	}
	s.flows = append(s.flows, flow)
	return nil
}

func (s *Store) ReplacePromptNodes(_ context.Context, projectID string, nodes []model.PromptNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PromptNode, len(nodes))
	for i, n := range nodes {
		n.ProjectID = projectID
		out[i] = n
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	s.prompts[projectID] = out
	return nil
}
