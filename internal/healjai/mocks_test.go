package healjai_test

import (
	"sync"

	"healjai/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a testify mock of the Notifier interface.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RoomMatched(room *models.ChatRoom) {
	m.Called(room)
}

func (m *MockNotifier) MessagePosted(room *models.ChatRoom, msg *models.Message) {
	m.Called(room, msg)
}

func (m *MockNotifier) RoomEnded(room *models.ChatRoom, msg *models.Message) {
	m.Called(room, msg)
}

// mockClient is a hub subscriber whose delivered events are captured in
// RecvChannel.
type mockClient struct {
	participantID string
	RecvChannel   chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(participantID string) *mockClient {
	return &mockClient{
		participantID: participantID,
		RecvChannel:   make(chan models.Event, 16),
	}
}

func (c *mockClient) GetParticipantID() string            { return c.participantID }
func (c *mockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }
func (c *mockClient) Run()                                {}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.RecvChannel)
	}
}

func (c *mockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
