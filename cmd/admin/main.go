package main

import (
	"fmt"
	"log"
	"os"

	"healjai/backend/internal/config"
	"healjai/backend/internal/localization"
	"healjai/backend/internal/models"
	"healjai/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Small ops CLI against the persisted backend: inspect the match queues and
// the active rooms, and force-close a room that should not stay open.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	svc := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: rooms | queue | close <room_id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "rooms":
		if err := listRooms(svc); err != nil {
			log.Fatalf("Error listing rooms: %v", err)
		}
	case "queue":
		if err := showQueue(svc); err != nil {
			log.Fatalf("Error reading queues: %v", err)
		}
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <room_id>")
			os.Exit(1)
		}
		if err := closeRoom(svc, cfg.Lang, os.Args[2]); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func listRooms(svc *storage.Service) error {
	rooms, err := svc.GetActiveRooms()
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		fmt.Println("No active rooms.")
		return nil
	}
	for _, room := range rooms {
		fmt.Printf("%s  suffering=%s  healing=%s  started=%s\n",
			room.RoomID, room.SufferingID, room.HealingID,
			room.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showQueue(svc *storage.Service) error {
	suffering, healing, err := svc.Waiting()
	if err != nil {
		return err
	}
	fmt.Printf("waiting suffering: %d\nwaiting healing:   %d\n", suffering, healing)
	return nil
}

// closeRoom ends the room the same way a leave does, closure notice
// included, and publishes the room-ended event for connected clients.
func closeRoom(svc *storage.Service, lang, roomID string) error {
	loc, err := localization.NewLocalizer()
	if err != nil {
		return err
	}

	msg, err := svc.EndRoom(roomID, loc.GetString(lang, "system.partner_left"))
	if err != nil {
		return err
	}
	if msg == nil {
		fmt.Println("Room was already closed.")
		return nil
	}

	room, err := svc.GetRoom(roomID)
	if err != nil {
		return err
	}
	return svc.PublishEvent(models.Event{
		Type:       models.EventRoomEnded,
		RoomID:     roomID,
		Recipients: []string{room.SufferingID, room.HealingID},
		Message:    msg,
	})
}
