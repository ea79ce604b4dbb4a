package healjai

import "healjai/backend/internal/models"

// Client is the interface for one connected subscriber of the notification
// channel. It abstracts the underlying delivery mechanism so the hub can
// manage different client types uniformly; the shipped implementation is a
// websocket, a long-poll bridge would satisfy it just as well.
type Client interface {
	// GetParticipantID returns the participant the connection belongs to.
	GetParticipantID() string

	// GetSendChannel returns the channel the hub delivers events through.
	// It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close gracefully shuts down the client's connection and channels.
	Close()
}
