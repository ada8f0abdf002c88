package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/lock"
	"github.com/agenthands/flowalign/internal/store"
)

var errStorage = errors.New("storage unavailable")

// countingCanonical counts replaces and can fail them.
type countingCanonical struct {
	store.CanonicalStore
	replaces   int32
	replaceErr error
}

func (c *countingCanonical) ReplaceCanonicalGraph(ctx context.Context, collectionID string, nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) error {
	atomic.AddInt32(&c.replaces, 1)
	if c.replaceErr != nil {
		return c.replaceErr
	}
	return c.CanonicalStore.ReplaceCanonicalGraph(ctx, collectionID, nodes, edges)
}

type failingAlignments struct {
	store.AlignmentStore
}

func (f *failingAlignments) ReplaceAlignments(ctx context.Context, projectID, collectionID string, rows []model.PromptFlowAlignment) error {
	return errStorage
}

type failingPrompts struct{}

func (failingPrompts) PromptNodes(ctx context.Context, projectID string) ([]model.PromptNode, error) {
	return nil, errStorage
}

type MockNamer struct {
	mu            sync.Mutex
	ResponseQueue []string
	Err           error
	Calls         int
}

func (m *MockNamer) NamePhase(ctx context.Context, nodes []model.CanonicalFlowNode) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return "", m.Err
}

// recordingLocker records every requested key before delegating. When
// attempts is set, each key is also sent on it without blocking.
type recordingLocker struct {
	lock.Locker
	mu       sync.Mutex
	keys     []string
	attempts chan string
}

func (r *recordingLocker) Acquire(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	if r.attempts != nil {
		select {
		case r.attempts <- key:
		default:
		}
	}
	return r.Locker.Acquire(ctx, key)
}

func (r *recordingLocker) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}
