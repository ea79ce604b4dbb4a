package healjai

import (
	"sync"
	"time"

	"healjai/backend/internal/models"

	"github.com/google/uuid"
)

// ParticipantRegistry owns the participant records. Implementations must be
// safe for concurrent use; records are never deleted while a room may still
// reference them.
type ParticipantRegistry interface {
	// Register stores a new participant with the given (already cleaned)
	// display name and role, status waiting.
	Register(name string, role models.Role) (*models.Participant, error)
	// Get returns the participant or ErrNotFound.
	Get(id string) (*models.Participant, error)
	// MarkMatched sets status matched and records the room assignment.
	MarkMatched(id, roomID string) error
	// MarkChatting transitions matched -> chatting; any other state is a no-op.
	MarkChatting(id string) error
	// MarkLeft transitions the participant to left regardless of prior
	// state. Unknown IDs are a no-op, not an error.
	MarkLeft(id string) error
	// Touch refreshes the participant's last-active timestamp.
	Touch(id string) error
}

// MemoryRegistry is the in-process ParticipantRegistry.
type MemoryRegistry struct {
	mu           sync.RWMutex
	participants map[string]*models.Participant
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{participants: make(map[string]*models.Participant)}
}

func (r *MemoryRegistry) Register(name string, role models.Role) (*models.Participant, error) {
	now := time.Now()
	p := &models.Participant{
		ID:           uuid.New().String(),
		Name:         name,
		Role:         role,
		Status:       models.StatusWaiting,
		JoinedAt:     now,
		LastActiveAt: now,
	}

	r.mu.Lock()
	r.participants[p.ID] = p
	r.mu.Unlock()

	cp := *p
	return &cp, nil
}

// Get returns a copy so callers never observe concurrent mutation.
func (r *MemoryRegistry) Get(id string) (*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRegistry) MarkMatched(id, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = models.StatusMatched
	p.RoomID = &roomID
	return nil
}

func (r *MemoryRegistry) MarkChatting(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[id]; ok && p.Status == models.StatusMatched {
		p.Status = models.StatusChatting
	}
	return nil
}

func (r *MemoryRegistry) MarkLeft(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[id]; ok {
		p.Status = models.StatusLeft
	}
	return nil
}

func (r *MemoryRegistry) Touch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[id]; ok {
		p.LastActiveAt = time.Now()
	}
	return nil
}
