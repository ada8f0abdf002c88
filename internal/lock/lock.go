// Package lock serializes canonical builds and alignment runs that share a
// scope, either inside one process or across processes through Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrLockTimeout = errors.New("lock not acquired before deadline")

// Locker hands out exclusive ownership of a key. The returned release func
// must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func CanonicalKey(collectionID string) string {
	return "canonical:" + collectionID
}

func AlignmentKey(projectID, collectionID string) string {
	return fmt.Sprintf("alignment:%s:%s", projectID, collectionID)
}
