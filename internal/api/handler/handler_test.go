package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"healjai/backend/internal/api/handler"
	"healjai/backend/internal/config"
	"healjai/backend/internal/healjai"
	"healjai/backend/internal/localization"
	"healjai/backend/internal/profanity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// setupRouter builds the API over the in-memory backend, the way the memory
// composition of the server does.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := localization.NewLocalizer()
	if err != nil {
		t.Fatalf("failed to load locales: %v", err)
	}

	hub := healjai.NewHub()
	coordinator := healjai.NewCoordinator(
		healjai.NewMemoryRegistry(),
		healjai.NewMemoryQueue(),
		healjai.NewMemoryRooms(),
		profanity.NewGuard(),
		hub,
		loc.GetString("en", "system.partner_left"),
	)
	go hub.Run()

	h := handler.NewHandler(coordinator, hub, loc, []byte("test-secret"), "en")

	r := gin.New()
	api := r.Group("/api/healjai")
	{
		api.POST("/join", h.Join)
		api.GET("/status/:participantID", h.Status)
		api.DELETE("/queue/:participantID", h.CancelSearch)
		api.GET("/rooms/:roomID", h.RoomData)
		api.POST("/rooms/:roomID/messages", h.SendMessage)
		api.GET("/rooms/:roomID/messages", h.GetMessages)
		api.POST("/rooms/:roomID/leave", h.Leave)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestJoinValidation(t *testing.T) {
	r := setupRouter(t)

	// Empty name
	w, resp := doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "  ", "role": "suffering"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, resp["error"])

	// Unknown role
	w, _ = doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Alice", "role": "therapist"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Profane name is refused outright
	w, _ = doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "fuck", "role": "suffering"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullChatFlow(t *testing.T) {
	r := setupRouter(t)

	// Alice joins and waits
	w, resp := doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Alice", "role": "suffering"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"], "join must hand out a session token")
	assert.EqualValues(t, config.SuggestedPollIntervalSeconds, resp["poll_interval_seconds"])
	aliceID, _ := resp["participant_id"].(string)
	assert.NotEmpty(t, aliceID)

	w, resp = doJSON(t, r, http.MethodGet, "/api/healjai/status/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["matched"])

	// Bob joins and both get matched
	_, resp = doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Bob", "role": "healing"})
	bobID, _ := resp["participant_id"].(string)

	w, resp = doJSON(t, r, http.MethodGet, "/api/healjai/status/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["matched"])
	roomID, _ := resp["room_id"].(string)
	assert.NotEmpty(t, roomID)

	// Room data is visible to members only
	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/healjai/rooms/%s?participant_id=%s", roomID, aliceID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/healjai/rooms/%s?participant_id=%s", roomID, "outsider"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Alice sends, the transcript shows it
	w, resp = doJSON(t, r, http.MethodPost, "/api/healjai/rooms/"+roomID+"/messages",
		gin.H{"participant_id": aliceID, "content": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = doJSON(t, r, http.MethodGet, "/api/healjai/rooms/"+roomID+"/messages", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["is_active"])
	msgs, _ := resp["messages"].([]interface{})
	assert.Len(t, msgs, 1)

	// Alice leaves; the transcript closes with the system notice
	w, resp = doJSON(t, r, http.MethodPost, "/api/healjai/rooms/"+roomID+"/leave", gin.H{"participant_id": aliceID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = doJSON(t, r, http.MethodGet, "/api/healjai/rooms/"+roomID+"/messages", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["is_active"])
	msgs, _ = resp["messages"].([]interface{})
	if assert.Len(t, msgs, 2) {
		last, _ := msgs[1].(map[string]interface{})
		assert.Nil(t, last["sender_id"], "last message is the system closure notice")
		assert.Equal(t, true, last["is_system"])
		first, _ := msgs[0].(map[string]interface{})
		assert.Equal(t, false, first["is_system"])
	}

	// Bob's later send hits the chat-ended condition
	w, resp = doJSON(t, r, http.MethodPost, "/api/healjai/rooms/"+roomID+"/messages",
		gin.H{"participant_id": bobID, "content": "hi"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotEmpty(t, resp["error"])
}

func TestStatusUnknownParticipant(t *testing.T) {
	r := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/healjai/status/ghost", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelSearch(t *testing.T) {
	r := setupRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Alice", "role": "suffering"})
	aliceID, _ := resp["participant_id"].(string)

	w, resp := doJSON(t, r, http.MethodDelete, "/api/healjai/queue/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	// A healing joiner now stays unmatched
	_, resp = doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Bob", "role": "healing"})
	bobID, _ := resp["participant_id"].(string)
	_, resp = doJSON(t, r, http.MethodGet, "/api/healjai/status/"+bobID, nil)
	assert.Equal(t, false, resp["matched"])
}

func TestProfaneContentMaskedInTranscript(t *testing.T) {
	r := setupRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Alice", "role": "suffering"})
	aliceID, _ := resp["participant_id"].(string)
	doJSON(t, r, http.MethodPost, "/api/healjai/join", gin.H{"name": "Bob", "role": "healing"})
	_, resp = doJSON(t, r, http.MethodGet, "/api/healjai/status/"+aliceID, nil)
	roomID, _ := resp["room_id"].(string)

	w, _ := doJSON(t, r, http.MethodPost, "/api/healjai/rooms/"+roomID+"/messages",
		gin.H{"participant_id": aliceID, "content": "what the fuck"})
	assert.Equal(t, http.StatusOK, w.Code, "profane chat content is accepted")

	_, resp = doJSON(t, r, http.MethodGet, "/api/healjai/rooms/"+roomID+"/messages", nil)
	msgs, _ := resp["messages"].([]interface{})
	if assert.Len(t, msgs, 1) {
		first, _ := msgs[0].(map[string]interface{})
		assert.Equal(t, "what the ****", first["content"])
	}
}
