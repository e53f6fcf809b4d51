package messages

import (
	"encoding/json"

	"taskrealm/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	// client requests; responses echo the request type
	MessageTypeLogin               MessageType = "login"
	MessageTypeGenerateArea        MessageType = "generate_area"
	MessageTypeGetArea             MessageType = "get_area"
	MessageTypeCurrentArea         MessageType = "current_area"
	MessageTypeMoveToNode          MessageType = "move_to_node"
	MessageTypeCompleteNode        MessageType = "complete_node"
	MessageTypeGetProgress         MessageType = "get_progress"
	MessageTypeGenerateWorldPath   MessageType = "generate_world_path"
	MessageTypeGetWorldPath        MessageType = "get_world_path"
	MessageTypeCompleteLevel       MessageType = "complete_level"
	MessageTypeValidateObjective   MessageType = "validate_objective"
	MessageTypeCheckObjective      MessageType = "check_objective"
	MessageTypeRegenerateObjective MessageType = "regenerate_objective"
	MessageTypeListWorlds          MessageType = "list_worlds"
	MessageTypeSyncTask            MessageType = "sync_task"

	// server pushes
	MessageTypeLoginSuccess MessageType = "login_success"
	MessageTypeProgress     MessageType = "progress"
	MessageTypeError        MessageType = "error"
)

// BaseMessage is the envelope for every outgoing message
type BaseMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Payload   interface{} `json:"payload"`
}

// IncomingMessage is the envelope for client requests; the payload is decoded
// once the type is known.
type IncomingMessage struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// LoginMessage binds the connection to an owner
type LoginMessage struct {
	OwnerID string `json:"owner_id"`
}

// LoginSuccessMessage represents a successful login response
type LoginSuccessMessage struct {
	OwnerID string `json:"owner_id"`
	Message string `json:"message"`
}

// GenerateAreaMessage requests a new area; an empty theme picks one by progress
type GenerateAreaMessage struct {
	ThemeKey string `json:"theme_key"`
}

// GetAreaMessage requests one area
type GetAreaMessage struct {
	AreaID string `json:"area_id"`
}

// NodeMessage targets a node of the current area by its "x,y" key
type NodeMessage struct {
	NodeKey string `json:"node_key"`
}

// GenerateWorldPathMessage requests a new path for a world
type GenerateWorldPathMessage struct {
	WorldSequence int `json:"world_sequence"`
}

// GetWorldPathMessage requests one world path
type GetWorldPathMessage struct {
	PathID string `json:"path_id"`
}

// CompleteLevelMessage completes a level of a world path
type CompleteLevelMessage struct {
	PathID  string `json:"path_id"`
	LevelID string `json:"level_id"`
}

// ObjectiveMessage carries an objective to evaluate
type ObjectiveMessage struct {
	Objective models.Objective `json:"objective"`
	ThemeKey  string           `json:"theme_key,omitempty"`
}

// ObjectiveResultMessage answers validate_objective and check_objective
type ObjectiveResultMessage struct {
	Objective models.Objective `json:"objective"`
	Result    bool             `json:"result"`
}

// SyncTaskMessage mirrors one task from the owner's to-do list
type SyncTaskMessage struct {
	Task models.Task `json:"task"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
