package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/proto"
	"github.com/vovakirdan/mockchat/internal/session"
)

// APIHandlers exposes the session snapshot and actions as JSON endpoints.
type APIHandlers struct {
	sess *session.Session
	bus  *core.Bus
	log  *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(sess *session.Session, bus *core.Bus, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		sess: sess,
		bus:  bus,
		log:  logger,
	}
}

// ConnectRequest represents the connect request body.
type ConnectRequest struct {
	Username string `json:"username" binding:"max=64"`
}

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4096"`
}

// JoinRoomRequest represents the join room request body.
type JoinRoomRequest struct {
	Room string `json:"room" binding:"required"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// State returns the current session snapshot.
// GET /api/state
func (h *APIHandlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, stateToProto("", h.sess.State()))
}

// Rooms lists the configured rooms with their message counts.
// GET /api/rooms
func (h *APIHandlers) Rooms(c *gin.Context) {
	counts := h.bus.MessageCounts()
	current := h.sess.State().CurrentRoom
	rooms := lo.Map(h.bus.Rooms(), func(name string, _ int) proto.RoomData {
		return proto.RoomData{Name: name, Messages: counts[name], Current: name == current}
	})
	c.JSON(http.StatusOK, rooms)
}

// RoomMessages returns the stored history of one room.
// GET /api/rooms/:room/messages
func (h *APIHandlers) RoomMessages(c *gin.Context) {
	room := c.Param("room")
	if !h.bus.HasRoom(room) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found", Code: core.ErrCodeRoomNotFound})
		return
	}
	c.JSON(http.StatusOK, messagesToProto(h.bus.Messages(room)))
}

// Users returns the roster.
// GET /api/users
func (h *APIHandlers) Users(c *gin.Context) {
	c.JSON(http.StatusOK, usersToProto(h.bus.Users()))
}

// Connect opens the local session.
// POST /api/connect
func (h *APIHandlers) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid connect request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeBadRequest})
		return
	}

	if err := h.sess.Connect(req.Username); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateToProto(string(session.ReasonConnect), h.sess.State()))
}

// Disconnect closes the local session.
// POST /api/disconnect
func (h *APIHandlers) Disconnect(c *gin.Context) {
	h.sess.Disconnect()
	c.JSON(http.StatusOK, stateToProto(string(session.ReasonDisconnect), h.sess.State()))
}

// SendMessage posts a message to the active room.
// POST /api/messages
func (h *APIHandlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeBadRequest})
		return
	}
	if !h.sess.State().Connected {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not connected", Code: core.ErrCodeNotConnected})
		return
	}

	if err := h.sess.SendMessage(req.Text); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stateToProto(string(session.ReasonMessage), h.sess.State()))
}

// JoinRoom switches the active room.
// POST /api/join
func (h *APIHandlers) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid join request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeBadRequest})
		return
	}

	if err := h.sess.JoinRoom(req.Room); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateToProto(string(session.ReasonRoomChange), h.sess.State()))
}

func (h *APIHandlers) writeError(c *gin.Context, err error) {
	code := errorCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("action failed")
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func statusFor(code string) int {
	switch code {
	case core.ErrCodeBadRequest, core.ErrCodeInvalidUsername:
		return http.StatusBadRequest
	case core.ErrCodeRoomNotFound:
		return http.StatusNotFound
	case core.ErrCodeAlreadyConnected, core.ErrCodeNotConnected:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
