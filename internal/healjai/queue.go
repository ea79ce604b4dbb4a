package healjai

import (
	"sync"

	"healjai/backend/internal/models"
)

// MatchQueue holds the waiting participants, one FIFO sequence per role.
// Order is insertion order and is never rearranged: the oldest waiting
// participant of each role is always matched first.
type MatchQueue interface {
	// Enqueue appends the participant to the queue for its role. Enqueueing
	// an already queued participant is a no-op, which guards against
	// duplicate joins.
	Enqueue(id string, role models.Role) error
	// TryMatch pops the head of both queues if neither is empty. ok is
	// false when no pair could be formed. The pop of both heads is a single
	// atomic step with respect to concurrent Enqueue/TryMatch calls.
	TryMatch() (sufferingID, healingID string, ok bool, err error)
	// RemoveIfWaiting removes the participant from whichever queue holds
	// it. Removing an absent participant is a no-op.
	RemoveIfWaiting(id string) error
}

// MemoryQueue is the in-process MatchQueue. A single mutex covers both
// role queues so that TryMatch observes a consistent pair of heads.
type MemoryQueue struct {
	mu        sync.Mutex
	suffering []string
	healing   []string
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(id string, role models.Role) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	target := &q.suffering
	if role == models.RoleHealing {
		target = &q.healing
	}
	for _, queued := range *target {
		if queued == id {
			return nil
		}
	}
	*target = append(*target, id)
	return nil
}

func (q *MemoryQueue) TryMatch() (string, string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.suffering) == 0 || len(q.healing) == 0 {
		return "", "", false, nil
	}
	sufferingID := q.suffering[0]
	healingID := q.healing[0]
	q.suffering = q.suffering[1:]
	q.healing = q.healing[1:]
	return sufferingID, healingID, true, nil
}

func (q *MemoryQueue) RemoveIfWaiting(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.suffering = remove(q.suffering, id)
	q.healing = remove(q.healing, id)
	return nil
}

// Waiting returns the number of queued participants per role.
func (q *MemoryQueue) Waiting() (suffering, healing int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.suffering), len(q.healing)
}

func remove(ids []string, id string) []string {
	for i, queued := range ids {
		if queued == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
