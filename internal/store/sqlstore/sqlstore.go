// Package sqlstore implements every storage contract on top of GORM, for
// Postgres in production and SQLite for local runs and tests.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/logger"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Store{db: db, log: baseLog.With("store", "sql")}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

func OpenPostgres(dsn string, baseLog *logger.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return New(db, baseLog), nil
}

func OpenSQLite(path string, baseLog *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database '%s': %w", path, err)
	}
	return New(db, baseLog), nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(
		&TranscriptRow{},
		&FlowRow{},
		&PromptNodeRow{},
		&CanonicalNodeRow{},
		&CanonicalEdgeRow{},
		&AlignmentRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) TranscriptIDs(ctx context.Context, collectionID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&TranscriptRow{}).
		Where("collection_id = ?", collectionID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) FlowsForTranscripts(ctx context.Context, transcriptIDs []string) ([]model.TranscriptFlow, error) {
	if len(transcriptIDs) == 0 {
		return nil, nil
	}
	var rows []FlowRow
	err := s.db.WithContext(ctx).
		Where("transcript_id IN ?", transcriptIDs).
		Order("transcript_id ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.TranscriptFlow, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.TranscriptFlow{
			ID:           r.ID,
			TranscriptID: r.TranscriptID,
			Nodes:        decodeList(r.Nodes),
			Connections:  decodeList(r.Connections),
		})
	}
	return out, nil
}

// decodeList tolerates stored payloads that are not JSON arrays.
func decodeList(raw datatypes.JSON) []any {
	if len(raw) == 0 {
		return nil
	}
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func (s *Store) PromptNodes(ctx context.Context, projectID string) ([]model.PromptNode, error) {
	var rows []PromptNodeRow
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.PromptNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PromptNode{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			Type:      r.Type,
			Label:     r.Label,
			Content:   r.Content,
			Position:  r.Position,
		})
	}
	return out, nil
}

func (s *Store) CanonicalNodes(ctx context.Context, collectionID string) ([]model.CanonicalFlowNode, error) {
	var rows []CanonicalNodeRow
	err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("ordinal ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.CanonicalFlowNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.CanonicalFlowNode{
			ID:           r.ID,
			CollectionID: r.CollectionID,
			Label:        r.Label,
			Type:         r.Type,
			Icon:         r.Icon,
			Content:      r.Content,
			SupportCount: r.SupportCount,
			Confidence:   r.Confidence,
		})
	}
	return out, nil
}

func (s *Store) CanonicalEdges(ctx context.Context, collectionID string) ([]model.CanonicalFlowEdge, error) {
	var rows []CanonicalEdgeRow
	err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("ordinal ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.CanonicalFlowEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.CanonicalFlowEdge{
			CollectionID:   r.CollectionID,
			FromNodeID:     r.FromNodeID,
			ToNodeID:       r.ToNodeID,
			Reason:         r.Reason,
			SupportCount:   r.SupportCount,
			TransitionRate: r.TransitionRate,
		})
	}
	return out, nil
}

func (s *Store) CountCanonicalNodes(ctx context.Context, collectionID string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&CanonicalNodeRow{}).
		Where("collection_id = ?", collectionID).
		Count(&n).Error
	return int(n), err
}

func (s *Store) ReplaceCanonicalGraph(ctx context.Context, collectionID string, nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.advisoryXactLock(tx, "canonical", collectionID); err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", collectionID).Delete(&CanonicalEdgeRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete canonical edges: %w", err)
		}
		if err := tx.Where("collection_id = ?", collectionID).Delete(&CanonicalNodeRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete canonical nodes: %w", err)
		}
		if len(nodes) > 0 {
			rows := make([]CanonicalNodeRow, len(nodes))
			for i, n := range nodes {
				rows[i] = CanonicalNodeRow{
					CollectionID: collectionID,
					ID:           n.ID,
					Ordinal:      i,
					Label:        n.Label,
					Type:         n.Type,
					Icon:         n.Icon,
					Content:      n.Content,
					SupportCount: n.SupportCount,
					Confidence:   n.Confidence,
				}
			}
			if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
				return fmt.Errorf("failed to insert canonical nodes: %w", err)
			}
		}
		if len(edges) > 0 {
			rows := make([]CanonicalEdgeRow, len(edges))
			for i, e := range edges {
				rows[i] = CanonicalEdgeRow{
					CollectionID:   collectionID,
					FromNodeID:     e.FromNodeID,
					ToNodeID:       e.ToNodeID,
					Ordinal:        i,
					Reason:         e.Reason,
					SupportCount:   e.SupportCount,
					TransitionRate: e.TransitionRate,
				}
			}
			if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
				return fmt.Errorf("failed to insert canonical edges: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Alignments(ctx context.Context, projectID, collectionID string) ([]model.PromptFlowAlignment, error) {
	var rows []AlignmentRow
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND collection_id = ?", projectID, collectionID).
		Order("score DESC, prompt_node_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.PromptFlowAlignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PromptFlowAlignment{
			ID:              r.ID,
			ProjectID:       r.ProjectID,
			CollectionID:    r.CollectionID,
			PromptNodeID:    r.PromptNodeID,
			CanonicalNodeID: r.CanonicalNodeID,
			Score:           r.Score,
			Reason:          r.Reason,
			CreatedAt:       r.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) ReplaceAlignments(ctx context.Context, projectID, collectionID string, rows []model.PromptFlowAlignment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.advisoryXactLock(tx, "alignment", projectID+":"+collectionID); err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND collection_id = ?", projectID, collectionID).
			Delete(&AlignmentRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete alignments: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		out := make([]AlignmentRow, len(rows))
		for i, r := range rows {
			out[i] = AlignmentRow{
				ID:              r.ID,
				ProjectID:       projectID,
				CollectionID:    collectionID,
				PromptNodeID:    r.PromptNodeID,
				CanonicalNodeID: r.CanonicalNodeID,
				Score:           r.Score,
				Reason:          r.Reason,
				CreatedAt:       r.CreatedAt,
			}
		}
		if err := tx.CreateInBatches(&out, 500).Error; err != nil {
			return fmt.Errorf("failed to insert alignments: %w", err)
		}
		return nil
	})
}

func (s *Store) AddTranscript(ctx context.Context, t model.Transcript) error {
	row := TranscriptRow{ID: t.ID, CollectionID: t.CollectionID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"collection_id"}),
		}).
		Create(&row).Error
}

func (s *Store) SaveFlow(ctx context.Context, flow model.TranscriptFlow) error {
	nodes, err := json.Marshal(flow.Nodes)
	if err != nil {
		return fmt.Errorf("failed to encode flow nodes: %w", err)
	}
	conns, err := json.Marshal(flow.Connections)
	if err != nil {
		return fmt.Errorf("failed to encode flow connections: %w", err)
	}
	row := FlowRow{
		ID:           flow.ID,
		TranscriptID: flow.TranscriptID,
		Nodes:        datatypes.JSON(nodes),
		Connections:  datatypes.JSON(conns),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"transcript_id", "nodes", "connections"}),
		}).
		Create(&row).Error
}

func (s *Store) ReplacePromptNodes(ctx context.Context, projectID string, nodes []model.PromptNode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&PromptNodeRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete prompt nodes: %w", err)
		}
		if len(nodes) == 0 {
			return nil
		}
		rows := make([]PromptNodeRow, len(nodes))
		for i, n := range nodes {
			rows[i] = PromptNodeRow{
				ProjectID: projectID,
				ID:        n.ID,
				Type:      n.Type,
				Label:     n.Label,
				Content:   n.Content,
				Position:  n.Position,
			}
		}
		if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
			return fmt.Errorf("failed to insert prompt nodes: %w", err)
		}
		return nil
	})
}

// advisoryXactLock serializes replaces of one scope across Postgres sessions.
// The lock is released when the transaction ends. No-op on other dialects.
func (s *Store) advisoryXactLock(tx *gorm.DB, namespace, id string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey64(namespace, id)).Error; err != nil {
		return fmt.Errorf("failed to take advisory lock %s:%s: %w", namespace, id, err)
	}
	return nil
}

func advisoryKey64(namespace, id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}
