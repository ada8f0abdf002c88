// Package core canonicalizes transcript flow graphs per collection and
// aligns authored prompt graphs against them.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/agenthands/flowalign/internal/core/align"
	"github.com/agenthands/flowalign/internal/core/canonical"
	"github.com/agenthands/flowalign/internal/core/community"
	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/lock"
	"github.com/agenthands/flowalign/internal/logger"
	"github.com/agenthands/flowalign/internal/observability"
	"github.com/agenthands/flowalign/internal/store"
)

var ErrInvalidArgument = errors.New("invalid argument")

// PhaseNamer names a group of canonical nodes. Optional.
type PhaseNamer interface {
	NamePhase(ctx context.Context, nodes []model.CanonicalFlowNode) (string, error)
}

type Engine struct {
	Stores   store.Stores
	Locker   lock.Locker
	Align    align.Config
	Detector community.Detector
	Namer    PhaseNamer
	Log      *logger.Logger

	UUIDGenerator func() string
	Now           func() time.Time

	scorer *align.Scorer
	tracer trace.Tracer
	builds singleflight.Group
}

func NewEngine(stores store.Stores, locker lock.Locker, cfg align.Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if locker == nil {
		locker = lock.NewLocal(0)
	}
	return &Engine{
		Stores:        stores,
		Locker:        locker,
		Align:         cfg,
		Detector:      community.NewDetector(),
		Log:           log.With("component", "Engine"),
		UUIDGenerator: uuid.NewString,
		Now:           func() time.Time { return time.Now().UTC() },
		scorer:        align.NewScorer(cfg),
		tracer:        observability.Tracer(),
	}
}

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RunAlignment classifies every prompt node of the project against the
// canonical graph of the collection. With persist false the stored
// alignments are left untouched.
func (e *Engine) RunAlignment(ctx context.Context, projectID, collectionID string, persist bool) (*model.AlignmentReport, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if err := requireID("collection id", collectionID); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "flowalign.RunAlignment", trace.WithAttributes(
		attribute.String("project_id", projectID),
		attribute.String("collection_id", collectionID),
		attribute.Bool("persist", persist),
	))
	defer span.End()

	report, err := e.runAlignment(ctx, projectID, collectionID, persist)
	if err != nil {
		failSpan(span, err)
		observability.RecordAlignmentRun("error", time.Since(start))
		e.Log.Error("alignment run failed", "project_id", projectID, "collection_id", collectionID, "error", err)
		return nil, err
	}

	result := "ok"
	if !persist {
		result = "dry_run"
	}
	observability.RecordAlignmentRun(result, time.Since(start))
	observability.RecordAlignmentItems(map[string]int{
		string(model.StatusCovered):         report.Counts.Covered,
		string(model.StatusUncovered):       report.Counts.Uncovered,
		string(model.StatusOverconstrained): report.Counts.Overconstrained,
	})
	span.SetAttributes(
		attribute.Int("prompt_nodes", report.PromptNodeCount),
		attribute.Int("canonical_nodes", report.CanonicalNodeCount),
		attribute.Int("persisted", report.PersistedCount),
	)
	e.Log.Info("alignment run finished",
		"project_id", projectID,
		"collection_id", collectionID,
		"covered", report.Counts.Covered,
		"uncovered", report.Counts.Uncovered,
		"overconstrained", report.Counts.Overconstrained,
		"persisted", report.PersistedCount,
		"dry_run", report.DryRun,
	)
	return report, nil
}

func (e *Engine) runAlignment(ctx context.Context, projectID, collectionID string, persist bool) (*model.AlignmentReport, error) {
	release, err := e.Locker.Acquire(ctx, lock.AlignmentKey(projectID, collectionID))
	if err != nil {
		return nil, err
	}
	defer release()

	prompts, err := e.Stores.Prompts.PromptNodes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt nodes: %w", err)
	}

	nodes, _, err := e.EnsureCanonical(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	candidates := e.scorer.Prepare(nodes)
	items := make([]model.AlignmentItem, 0, len(prompts))
	for _, p := range prompts {
		if m, ok := e.scorer.BestMatch(p, candidates); ok {
			items = append(items, e.Align.Classify(p, &m))
		} else {
			items = append(items, e.Align.Classify(p, nil))
		}
	}
	align.ResolveCollisions(items)

	report := &model.AlignmentReport{
		ProjectID:          projectID,
		CollectionID:       collectionID,
		PromptNodeCount:    len(prompts),
		CanonicalNodeCount: len(nodes),
		DryRun:             !persist,
	}

	if persist {
		n, err := e.persist(ctx, projectID, collectionID, items)
		if err != nil {
			return nil, err
		}
		report.PersistedCount = n
	}

	for _, it := range items {
		switch it.Status {
		case model.StatusCovered:
			report.Counts.Covered++
		case model.StatusOverconstrained:
			report.Counts.Overconstrained++
		default:
			report.Counts.Uncovered++
		}
	}

	align.SortItems(items)
	report.Items = items
	return report, nil
}

// persist replaces the stored alignments of the pair with every item that
// has a canonical match scoring at least the floor.
func (e *Engine) persist(ctx context.Context, projectID, collectionID string, items []model.AlignmentItem) (int, error) {
	now := e.Now()
	var rows []model.PromptFlowAlignment
	for _, it := range items {
		if it.CanonicalNodeID == "" || it.Confidence < e.Align.Floor {
			continue
		}
		rows = append(rows, model.PromptFlowAlignment{
			ID:              e.UUIDGenerator(),
			ProjectID:       projectID,
			CollectionID:    collectionID,
			PromptNodeID:    it.PromptNodeID,
			CanonicalNodeID: it.CanonicalNodeID,
			Score:           it.Confidence,
			Reason:          it.Reason,
			CreatedAt:       now,
		})
	}

	if err := e.Stores.Alignments.ReplaceAlignments(ctx, projectID, collectionID, rows); err != nil {
		return 0, fmt.Errorf("failed to persist alignments: %w", err)
	}
	return len(rows), nil
}

type ensured struct {
	nodes []model.CanonicalFlowNode
	built bool
}

// EnsureCanonical returns the canonical nodes of a collection, building them
// first when the collection has none. An existing graph is never refreshed
// here, see RebuildCanonical.
func (e *Engine) EnsureCanonical(ctx context.Context, collectionID string) ([]model.CanonicalFlowNode, bool, error) {
	if err := requireID("collection id", collectionID); err != nil {
		return nil, false, err
	}

	start := time.Now()
	n, err := e.Stores.Canonical.CountCanonicalNodes(ctx, collectionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count canonical nodes: %w", err)
	}
	if n > 0 {
		nodes, err := e.loadCanonicalNodes(ctx, collectionID)
		if err == nil {
			observability.RecordCanonicalBuild("cached", time.Since(start))
		}
		return nodes, false, err
	}

	// The shared flight ignores the cancellation of the caller that started
	// it; every caller stops waiting on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := e.builds.DoChan(collectionID, func() (interface{}, error) {
		ctx := flightCtx
		release, err := e.Locker.Acquire(ctx, lock.CanonicalKey(collectionID))
		if err != nil {
			return nil, err
		}
		defer release()

		// Another process may have built it while we waited.
		n, err := e.Stores.Canonical.CountCanonicalNodes(ctx, collectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to count canonical nodes: %w", err)
		}
		if n > 0 {
			nodes, err := e.loadCanonicalNodes(ctx, collectionID)
			if err != nil {
				return nil, err
			}
			return ensured{nodes: nodes}, nil
		}

		graph, err := e.build(ctx, collectionID)
		if err != nil {
			return nil, err
		}
		return ensured{nodes: graph.Nodes, built: true}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	if res.Err != nil {
		observability.RecordCanonicalBuild("error", time.Since(start))
		return nil, false, res.Err
	}
	out := res.Val.(ensured)
	if !out.built {
		observability.RecordCanonicalBuild("cached", time.Since(start))
	}
	return out.nodes, out.built, nil
}

// RebuildCanonical recomputes the canonical graph of a collection from its
// current transcript flows regardless of what is stored.
func (e *Engine) RebuildCanonical(ctx context.Context, collectionID string) (model.CanonicalGraph, error) {
	if err := requireID("collection id", collectionID); err != nil {
		return model.CanonicalGraph{}, err
	}

	release, err := e.Locker.Acquire(ctx, lock.CanonicalKey(collectionID))
	if err != nil {
		return model.CanonicalGraph{}, err
	}
	defer release()

	graph, err := e.build(ctx, collectionID)
	if err != nil {
		observability.RecordCanonicalBuild("error", 0)
		return model.CanonicalGraph{}, err
	}
	return graph, nil
}

// build must run under the canonical lock of the collection.
func (e *Engine) build(ctx context.Context, collectionID string) (model.CanonicalGraph, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "flowalign.BuildCanonical", trace.WithAttributes(
		attribute.String("collection_id", collectionID),
	))
	defer span.End()

	transcriptIDs, err := e.Stores.Transcripts.TranscriptIDs(ctx, collectionID)
	if err != nil {
		err = fmt.Errorf("failed to list transcripts: %w", err)
		failSpan(span, err)
		return model.CanonicalGraph{}, err
	}
	flows, err := e.Stores.Flows.FlowsForTranscripts(ctx, transcriptIDs)
	if err != nil {
		err = fmt.Errorf("failed to load transcript flows: %w", err)
		failSpan(span, err)
		return model.CanonicalGraph{}, err
	}

	graph, stats := canonical.Build(collectionID, flows)
	if stats.SkippedNodes > 0 || stats.SkippedConnections > 0 {
		e.Log.Debug("skipped malformed flow records",
			"collection_id", collectionID,
			"nodes", stats.SkippedNodes,
			"connections", stats.SkippedConnections,
		)
		observability.RecordSkipped(stats.SkippedNodes, stats.SkippedConnections)
	}

	if err := e.Stores.Canonical.ReplaceCanonicalGraph(ctx, collectionID, graph.Nodes, graph.Edges); err != nil {
		err = fmt.Errorf("failed to replace canonical graph: %w", err)
		failSpan(span, err)
		return model.CanonicalGraph{}, err
	}

	observability.RecordCanonicalBuild("built", time.Since(start))
	span.SetAttributes(
		attribute.Int("flows", stats.Flows),
		attribute.Int("nodes", len(graph.Nodes)),
		attribute.Int("edges", len(graph.Edges)),
	)
	e.Log.Info("canonical graph built",
		"collection_id", collectionID,
		"transcripts", len(transcriptIDs),
		"flows", stats.Flows,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
	)
	return graph, nil
}

func (e *Engine) loadCanonicalNodes(ctx context.Context, collectionID string) ([]model.CanonicalFlowNode, error) {
	nodes, err := e.Stores.Canonical.CanonicalNodes(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical nodes: %w", err)
	}
	return nodes, nil
}

// CanonicalGraph returns the stored canonical graph, building it if absent.
func (e *Engine) CanonicalGraph(ctx context.Context, collectionID string) (model.CanonicalGraph, error) {
	nodes, _, err := e.EnsureCanonical(ctx, collectionID)
	if err != nil {
		return model.CanonicalGraph{}, err
	}
	edges, err := e.Stores.Canonical.CanonicalEdges(ctx, collectionID)
	if err != nil {
		return model.CanonicalGraph{}, fmt.Errorf("failed to load canonical edges: %w", err)
	}
	return model.CanonicalGraph{
		CollectionID: collectionID,
		Nodes:        nodes,
		Edges:        edges,
	}, nil
}

// Alignments returns the stored alignment rows of a project and collection.
func (e *Engine) Alignments(ctx context.Context, projectID, collectionID string) ([]model.PromptFlowAlignment, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if err := requireID("collection id", collectionID); err != nil {
		return nil, err
	}
	rows, err := e.Stores.Alignments.Alignments(ctx, projectID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alignments: %w", err)
	}
	return rows, nil
}
