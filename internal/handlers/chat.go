package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-chat/internal/service"
)

// ChatHandler serves the public room chat endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendMessageRequest struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	UserEmail string `json:"userEmail"`
	RoomID    string `json:"roomId"`
}

type getMessagesRequest struct {
	RoomID        string `json:"roomId"`
	Since         string `json:"since"`
	LastMessageID string `json:"lastMessageId"`
}

// ListRooms returns active rooms with their message counts.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms, err := h.chat.ListRoomsSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetMessages returns one page of a room's messages.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	h.listMessages(c, getMessagesRequest{
		RoomID: c.Query("roomId"),
		Since:  c.Query("since"),
	})
}

// PostMessage stores a message from a chat participant.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.sendMessage(c, req, http.StatusCreated)
}

// Chat dispatches the sendMessage and getMessages actions.
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := bindAction(c)
	if !ok {
		return
	}

	switch req.Action {
	case "sendMessage":
		var data sendMessageRequest
		if !bindData(c, req, &data) {
			return
		}
		h.sendMessage(c, data, http.StatusOK)
	case "getMessages":
		var data getMessagesRequest
		if !bindData(c, req, &data) {
			return
		}
		h.listMessages(c, data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
	}
}

func (h *ChatHandler) sendMessage(c *gin.Context, req sendMessageRequest, status int) {
	msg, err := h.chat.SendMessage(c.Request.Context(), service.SendMessageInput{
		Content:   req.Content,
		Username:  req.Username,
		UserEmail: req.UserEmail,
		RoomID:    req.RoomID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, msg)
}

func (h *ChatHandler) listMessages(c *gin.Context, req getMessagesRequest) {
	cursor := req.Since
	if cursor == "" {
		cursor = req.LastMessageID
	}
	since, err := parseSince(cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
		return
	}

	msgs, err := h.chat.ListMessages(c.Request.Context(), req.RoomID, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
