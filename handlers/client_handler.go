package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskrealm/server/messages"
	"taskrealm/server/metrics"
	"taskrealm/server/network"
	"taskrealm/server/persistence"
	"taskrealm/server/services"
)

const requestTimeout = 10 * time.Second

// Services bundles the operations exposed over the socket.
type Services struct {
	Adventure  *services.AdventureService
	WorldPaths *services.WorldPathService
	Objectives *services.ObjectiveService
}

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	services      Services
	clientManager *ClientManager
	logger        *zap.Logger
	ownerID       string
}

// HandleClientConnection serves one websocket until it closes
func HandleClientConnection(wsConn *websocket.Conn, svc Services, clientManager *ClientManager, m *metrics.Metrics, logger *zap.Logger) {
	log := logger.Named("ClientHandler")
	log.Info("New connection", zap.String("remote", wsConn.RemoteAddr().String()))

	conn := network.NewConnection(wsConn, log)
	handler := &ClientHandler{
		conn:          conn,
		services:      svc,
		clientManager: clientManager,
		logger:        log,
	}

	m.ActiveConnections.Inc()
	defer m.ActiveConnections.Dec()

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	// Clean up when the connection is closed
	if handler.ownerID != "" {
		clientManager.RemoveClient(handler.ownerID, handler)
		log.Info("Owner disconnected", zap.String("ownerID", handler.ownerID))
	}
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var msg messages.IncomingMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.logger.Warn("Error unmarshaling message", zap.Error(err))
		h.sendError(msg, "INVALID_MESSAGE", "message is not valid JSON")
		return
	}

	if msg.Type == messages.MessageTypeLogin {
		h.handleLogin(msg)
		return
	}
	if h.ownerID == "" {
		h.sendError(msg, "NOT_AUTHENTICATED", "login first")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var (
		result       interface{}
		err          error
		pushProgress bool
	)
	switch msg.Type {
	case messages.MessageTypeGenerateArea:
		var req messages.GenerateAreaMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Adventure.GenerateArea(ctx, h.ownerID, req.ThemeKey)
		pushProgress = true
	case messages.MessageTypeGetArea:
		var req messages.GetAreaMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Adventure.GetArea(ctx, h.ownerID, req.AreaID)
	case messages.MessageTypeCurrentArea:
		result, err = h.services.Adventure.CurrentArea(ctx, h.ownerID)
	case messages.MessageTypeMoveToNode:
		var req messages.NodeMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Adventure.MoveToNode(ctx, h.ownerID, req.NodeKey)
		pushProgress = true
	case messages.MessageTypeCompleteNode:
		var req messages.NodeMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Adventure.CompleteNode(ctx, h.ownerID, req.NodeKey)
		pushProgress = true
	case messages.MessageTypeGetProgress:
		result, err = h.services.Adventure.Progress(ctx, h.ownerID)
	case messages.MessageTypeGenerateWorldPath:
		var req messages.GenerateWorldPathMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.WorldPaths.GenerateWorldPath(ctx, h.ownerID, req.WorldSequence)
	case messages.MessageTypeGetWorldPath:
		var req messages.GetWorldPathMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.WorldPaths.GetWorldPath(ctx, h.ownerID, req.PathID)
	case messages.MessageTypeCompleteLevel:
		var req messages.CompleteLevelMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.WorldPaths.CompleteLevel(ctx, h.ownerID, req.PathID, req.LevelID)
	case messages.MessageTypeValidateObjective:
		var req messages.ObjectiveMessage
		if !h.decode(msg, &req) {
			return
		}
		var ok bool
		ok, err = h.services.Objectives.ValidateObjective(ctx, h.ownerID, req.Objective)
		result = messages.ObjectiveResultMessage{Objective: req.Objective, Result: ok}
	case messages.MessageTypeCheckObjective:
		var req messages.ObjectiveMessage
		if !h.decode(msg, &req) {
			return
		}
		var ok bool
		ok, err = h.services.Objectives.CheckObjectiveCompletion(ctx, h.ownerID, req.Objective)
		result = messages.ObjectiveResultMessage{Objective: req.Objective, Result: ok}
	case messages.MessageTypeRegenerateObjective:
		var req messages.ObjectiveMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Objectives.RegenerateObjective(ctx, h.ownerID, req.Objective, req.ThemeKey)
	case messages.MessageTypeSyncTask:
		var req messages.SyncTaskMessage
		if !h.decode(msg, &req) {
			return
		}
		result, err = h.services.Objectives.SyncTask(ctx, h.ownerID, req.Task)
	case messages.MessageTypeListWorlds:
		result = h.services.WorldPaths.Worlds()
	default:
		h.logger.Warn("Unknown message type", zap.String("type", string(msg.Type)))
		h.sendError(msg, "UNKNOWN_MESSAGE_TYPE", "Unknown message type received")
		return
	}

	if err != nil {
		h.sendFailure(msg, err)
		return
	}
	h.send(msg, result)

	if pushProgress {
		h.pushProgress(ctx)
	}
}

// handleLogin binds the connection to an owner
func (h *ClientHandler) handleLogin(msg messages.IncomingMessage) {
	var req messages.LoginMessage
	if !h.decode(msg, &req) {
		return
	}
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		h.sendError(msg, "LOGIN_FAILED", "owner_id is required")
		return
	}

	if h.ownerID != "" {
		h.clientManager.RemoveClient(h.ownerID, h)
	}
	h.ownerID = ownerID
	h.clientManager.AddClient(ownerID, h)
	h.logger.Info("Owner logged in", zap.String("ownerID", ownerID))

	h.conn.SendMessage(messages.BaseMessage{
		Type:      messages.MessageTypeLoginSuccess,
		RequestID: msg.RequestID,
		Payload: messages.LoginSuccessMessage{
			OwnerID: ownerID,
			Message: "Login successful",
		},
	})
}

// pushProgress sends the owner's progress to all of their connections
func (h *ClientHandler) pushProgress(ctx context.Context) {
	progress, err := h.services.Adventure.Progress(ctx, h.ownerID)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			h.logger.Error("Failed to load progress for push", zap.String("ownerID", h.ownerID), zap.Error(err))
		}
		return
	}
	h.clientManager.SendToOwner(h.ownerID, messages.BaseMessage{
		Type:    messages.MessageTypeProgress,
		Payload: progress,
	})
}

func (h *ClientHandler) decode(msg messages.IncomingMessage, v interface{}) bool {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		h.sendError(msg, "INVALID_PAYLOAD", err.Error())
		return false
	}
	return true
}

func (h *ClientHandler) send(msg messages.IncomingMessage, payload interface{}) {
	if err := h.conn.SendMessage(messages.BaseMessage{
		Type:      msg.Type,
		RequestID: msg.RequestID,
		Payload:   payload,
	}); err != nil {
		h.logger.Error("Error sending response", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

// sendFailure maps a service error onto a wire error code
func (h *ClientHandler) sendFailure(msg messages.IncomingMessage, err error) {
	if rej, ok := services.IsRejection(err); ok {
		h.sendError(msg, strings.ToUpper(rej.Code), rej.Reason)
		return
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		h.sendError(msg, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInvalidTask):
		h.sendError(msg, "INVALID_PAYLOAD", err.Error())
	case errors.Is(err, services.ErrNoArea):
		h.sendError(msg, "NO_AREA", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.sendError(msg, "TIMEOUT", "request timed out")
	default:
		h.logger.Error("Request failed",
			zap.String("type", string(msg.Type)), zap.String("ownerID", h.ownerID), zap.Error(err))
		h.sendError(msg, "INTERNAL_ERROR", "request failed")
	}
}

func (h *ClientHandler) sendError(msg messages.IncomingMessage, code, message string) {
	h.conn.SendMessage(messages.BaseMessage{
		Type:      messages.MessageTypeError,
		RequestID: msg.RequestID,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	})
}
