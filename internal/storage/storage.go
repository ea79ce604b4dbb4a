// Package storage is the persisted backend of the matching core:
// participants, rooms and messages live in PostgreSQL via GORM, the wait
// queues and the event pub/sub live in Redis. Service implements the
// healjai ParticipantRegistry, MatchQueue, RoomManager and EventPublisher
// interfaces, so it is interchangeable with the in-memory backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"healjai/backend/internal/healjai"
	"healjai/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	queueKeySuffering = "healjai:queue:suffering"
	queueKeyHealing   = "healjai:queue:healing"
	eventChannel      = "healjai:events"
)

// popPairScript pops the heads of both role queues only when neither queue
// is empty. Running it as a single Lua script makes the pop-of-two-heads
// atomic: two concurrent matchers can never receive the same participant.
var popPairScript = redis.NewScript(`
if redis.call('LLEN', KEYS[1]) > 0 and redis.call('LLEN', KEYS[2]) > 0 then
    return {redis.call('LPOP', KEYS[1]), redis.call('LPOP', KEYS[2])}
end
return false
`)

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs the persisted backend.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- ParticipantRegistry ---

func (s *Service) Register(name string, role models.Role) (*models.Participant, error) {
	now := time.Now()
	p := &models.Participant{
		Name:         name,
		Role:         role,
		Status:       models.StatusWaiting,
		JoinedAt:     now,
		LastActiveAt: now,
	}
	if err := s.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(id string) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, healjai.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) MarkMatched(id, roomID string) error {
	return s.DB.Model(&models.Participant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.StatusMatched,
			"room_id": roomID,
		}).Error
}

func (s *Service) MarkChatting(id string) error {
	// Matched -> chatting only; any other state stays untouched.
	return s.DB.Model(&models.Participant{}).
		Where("id = ? AND status = ?", id, models.StatusMatched).
		Update("status", models.StatusChatting).Error
}

func (s *Service) MarkLeft(id string) error {
	// Idempotent and tolerant of unknown IDs: an update matching zero rows
	// is not an error.
	return s.DB.Model(&models.Participant{}).
		Where("id = ?", id).
		Update("status", models.StatusLeft).Error
}

func (s *Service) Touch(id string) error {
	return s.DB.Model(&models.Participant{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now()).Error
}

// --- MatchQueue ---

func (s *Service) Enqueue(id string, role models.Role) error {
	key := queueKeySuffering
	if role == models.RoleHealing {
		key = queueKeyHealing
	}

	// Duplicate joins must not queue the participant twice.
	_, err := s.Redis.LPos(s.Ctx, key, id, redis.LPosArgs{}).Result()
	if err == nil {
		return nil
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	return s.Redis.RPush(s.Ctx, key, id).Err()
}

func (s *Service) TryMatch() (string, string, bool, error) {
	res, err := popPairScript.Run(s.Ctx, s.Redis, []string{queueKeySuffering, queueKeyHealing}).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}

	pair, ok := res.([]interface{})
	if !ok || len(pair) != 2 {
		return "", "", false, nil
	}
	sufferingID, _ := pair[0].(string)
	healingID, _ := pair[1].(string)
	if sufferingID == "" || healingID == "" {
		return "", "", false, nil
	}
	return sufferingID, healingID, true, nil
}

func (s *Service) RemoveIfWaiting(id string) error {
	if err := s.Redis.LRem(s.Ctx, queueKeySuffering, 0, id).Err(); err != nil {
		return err
	}
	return s.Redis.LRem(s.Ctx, queueKeyHealing, 0, id).Err()
}

// Waiting returns the queue depth per role, used by the ops CLI.
func (s *Service) Waiting() (suffering, healing int64, err error) {
	suffering, err = s.Redis.LLen(s.Ctx, queueKeySuffering).Result()
	if err != nil {
		return 0, 0, err
	}
	healing, err = s.Redis.LLen(s.Ctx, queueKeyHealing).Result()
	if err != nil {
		return 0, 0, err
	}
	return suffering, healing, nil
}

// --- RoomManager ---

func (s *Service) CreateRoom(sufferingID, healingID string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		RoomID:      uuid.New().String(),
		SufferingID: sufferingID,
		HealingID:   healingID,
		IsActive:    true,
		StartedAt:   time.Now(),
	}
	if err := s.DB.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, healjai.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) AppendMessage(roomID string, senderID *string, senderName, content string) (*models.Message, error) {
	var msg *models.Message

	// Append and the active-check run in one transaction with the room row
	// locked, so a message can never slip in behind a concurrent close.
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.ChatRoom
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", roomID).First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return healjai.ErrNotFound
		}
		if err != nil {
			return err
		}

		if senderID != nil {
			if !room.IsActive {
				return healjai.ErrRoomClosed
			}
			if !room.HasParticipant(*senderID) {
				return healjai.ErrUnauthorized
			}
		}

		msg = &models.Message{
			RoomID:     roomID,
			SenderID:   senderID,
			SenderName: senderName,
			Content:    content,
			CreatedAt:  time.Now(),
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) EndRoom(roomID, reason string) (*models.Message, error) {
	var msg *models.Message

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.ChatRoom
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", roomID).First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return healjai.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !room.IsActive {
			// Already closed; idempotent no-op.
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.ChatRoom{}).
			Where("room_id = ?", roomID).
			Updates(map[string]interface{}{
				"is_active": false,
				"ended_at":  now,
			}).Error; err != nil {
			return err
		}

		msg = &models.Message{
			RoomID:     roomID,
			SenderName: models.SystemSenderName,
			Content:    reason,
			CreatedAt:  now,
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) Messages(roomID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.DB.Where("room_id = ?", roomID).
		Order("seq asc").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) FindActiveRoomFor(participantID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.Where("is_active = ?", true).
		Where("suffering_id = ? OR healing_id = ?", participantID, participantID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetActiveRooms returns every currently active room, used by the ops CLI.
func (s *Service) GetActiveRooms() ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	if err := s.DB.Where("is_active = ?", true).
		Order("started_at asc").Find(&rooms).Error; err != nil {
		log.Printf("ERROR: failed to retrieve active rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// --- EventPublisher ---

func (s *Service) PublishEvent(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, eventChannel, payload).Err()
}

// SubscribeEvents returns the pub/sub subscription carrying all room events.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, eventChannel)
}
