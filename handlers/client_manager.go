package handlers

import (
	"sync"

	"go.uber.org/zap"
)

// ClientManager tracks open connections per owner. One owner may be
// connected from several clients at once.
type ClientManager struct {
	clients map[string]map[*ClientHandler]struct{}
	mutex   sync.RWMutex
	logger  *zap.Logger
}

// NewClientManager creates a new client manager
func NewClientManager(logger *zap.Logger) *ClientManager {
	return &ClientManager{
		clients: make(map[string]map[*ClientHandler]struct{}),
		logger:  logger.Named("ClientManager"),
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(ownerID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	set, exists := cm.clients[ownerID]
	if !exists {
		set = make(map[*ClientHandler]struct{})
		cm.clients[ownerID] = set
	}
	set[handler] = struct{}{}
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(ownerID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	set := cm.clients[ownerID]
	delete(set, handler)
	if len(set) == 0 {
		delete(cm.clients, ownerID)
	}
}

// SendToOwner sends a message to every connection of one owner
func (cm *ClientManager) SendToOwner(ownerID string, msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for client := range cm.clients[ownerID] {
		if err := client.conn.SendMessage(msg); err != nil {
			cm.logger.Error("Error sending to client", zap.String("ownerID", ownerID), zap.Error(err))
		}
	}
}

// ConnectionCount returns how many connections an owner has open
func (cm *ClientManager) ConnectionCount(ownerID string) int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients[ownerID])
}
