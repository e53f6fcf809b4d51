package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskrealm/server/models"
)

// Compile-time check
var _ Storage = (*JSONStore)(nil)

// JSONStore handles data persistence using a local JSON file. With an empty
// file path it keeps everything in memory.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
	logger   *zap.Logger
	now      func() time.Time
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Areas      map[string]*models.Area      `json:"areas"`
	Progress   map[string]*models.Progress  `json:"progress"`
	WorldPaths map[string]*models.WorldPath `json:"world_paths"`
	Tasks      map[string]*models.Task      `json:"tasks"` // keyed by taskKey
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string, logger *zap.Logger) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     newJSONData(),
		logger:   logger.Named("JSONStore"),
		now:      time.Now,
	}
	if filePath == "" {
		return store, nil
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}
	store.logger.Info("JSON store opened", zap.String("path", filePath),
		zap.Int("areas", len(store.data.Areas)), zap.Int("tasks", len(store.data.Tasks)))
	return store, nil
}

// NewMemoryStore returns a JSONStore that never touches disk.
func NewMemoryStore(logger *zap.Logger) *JSONStore {
	store, _ := NewJSONStore("", logger)
	return store
}

func newJSONData() *JSONData {
	return &JSONData{
		Areas:      make(map[string]*models.Area),
		Progress:   make(map[string]*models.Progress),
		WorldPaths: make(map[string]*models.WorldPath),
		Tasks:      make(map[string]*models.Task),
	}
}

func (js *JSONStore) loadFromFile() error {
	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	data := newJSONData()
	if len(file) > 0 {
		if err := json.Unmarshal(file, data); err != nil {
			return err
		}
	}
	js.data = data
	return nil
}

// saveToFile writes the whole database through a temp file and rename so a
// crash never leaves a half-written file. Callers hold the write lock.
func (js *JSONStore) saveToFile() error {
	if js.filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".taskrealm-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// commit applies mutate under the write lock and persists. On a failed write
// the in-memory state is rolled back to the last saved snapshot.
func (js *JSONStore) commit(mutate func(d *JSONData) error) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	snapshot, err := clone(js.data)
	if err != nil {
		return fmt.Errorf("failed to snapshot JSON store: %w", err)
	}
	if err := mutate(js.data); err != nil {
		js.data = snapshot
		return err
	}
	if err := js.saveToFile(); err != nil {
		js.data = snapshot
		js.logger.Error("Failed to write JSON store", zap.Error(err))
		return fmt.Errorf("failed to write JSON store: %w", err)
	}
	return nil
}

// SaveAreaGraph stores a new area and the owner's progress
func (js *JSONStore) SaveAreaGraph(ctx context.Context, area *models.Area, progress *models.Progress) error {
	a, err := clone(area)
	if err != nil {
		return fmt.Errorf("failed to copy area: %w", err)
	}
	p, err := clone(progress)
	if err != nil {
		return fmt.Errorf("failed to copy progress: %w", err)
	}
	return js.commit(func(d *JSONData) error {
		if _, exists := d.Areas[a.ID]; exists {
			return fmt.Errorf("area %s already exists", a.ID)
		}
		d.Areas[a.ID] = a
		d.Progress[p.OwnerID] = p
		return nil
	})
}

// LoadArea loads an area with all its nodes
func (js *JSONStore) LoadArea(ctx context.Context, areaID string) (*models.Area, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	area, exists := js.data.Areas[areaID]
	if !exists {
		return nil, fmt.Errorf("area %s: %w", areaID, ErrNotFound)
	}
	return clone(area)
}

// LatestAreaSequence returns the owner's highest area sequence
func (js *JSONStore) LatestAreaSequence(ctx context.Context, ownerID string) (int, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	latest := 0
	for _, a := range js.data.Areas {
		if a.OwnerID == ownerID && a.Sequence > latest {
			latest = a.Sequence
		}
	}
	return latest, nil
}

// SaveNodeStates updates node flags, area counters and progress together
func (js *JSONStore) SaveNodeStates(ctx context.Context, area *models.Area, nodes []*models.Node, progress *models.Progress) error {
	changed := make([]*models.Node, 0, len(nodes))
	for _, n := range nodes {
		c, err := clone(n)
		if err != nil {
			return fmt.Errorf("failed to copy node: %w", err)
		}
		changed = append(changed, c)
	}
	p, err := clone(progress)
	if err != nil {
		return fmt.Errorf("failed to copy progress: %w", err)
	}

	return js.commit(func(d *JSONData) error {
		stored, exists := d.Areas[area.ID]
		if !exists {
			return fmt.Errorf("area %s: %w", area.ID, ErrNotFound)
		}
		for _, n := range changed {
			current, ok := stored.Nodes[n.Coord]
			if !ok {
				return fmt.Errorf("node %s in area %s: %w", n.Coord, area.ID, ErrNotFound)
			}
			current.Unlocked = n.Unlocked
			current.Completed = n.Completed
			current.Objective = n.Objective
		}
		stored.NodesExplored = area.NodesExplored
		stored.Completed = area.Completed
		d.Progress[p.OwnerID] = p
		return nil
	})
}

// SaveProgress upserts an owner's progress
func (js *JSONStore) SaveProgress(ctx context.Context, progress *models.Progress) error {
	p, err := clone(progress)
	if err != nil {
		return fmt.Errorf("failed to copy progress: %w", err)
	}
	return js.commit(func(d *JSONData) error {
		d.Progress[p.OwnerID] = p
		return nil
	})
}

// LoadProgress loads an owner's progress
func (js *JSONStore) LoadProgress(ctx context.Context, ownerID string) (*models.Progress, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	p, exists := js.data.Progress[ownerID]
	if !exists {
		return nil, fmt.Errorf("progress for %s: %w", ownerID, ErrNotFound)
	}
	return clone(p)
}

// SaveWorldPath stores a new world path with its levels
func (js *JSONStore) SaveWorldPath(ctx context.Context, path *models.WorldPath) error {
	wp, err := clone(path)
	if err != nil {
		return fmt.Errorf("failed to copy world path: %w", err)
	}
	return js.commit(func(d *JSONData) error {
		d.WorldPaths[wp.ID] = wp
		return nil
	})
}

// LoadWorldPath loads a world path by ID
func (js *JSONStore) LoadWorldPath(ctx context.Context, pathID string) (*models.WorldPath, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	wp, exists := js.data.WorldPaths[pathID]
	if !exists {
		return nil, fmt.Errorf("world path %s: %w", pathID, ErrNotFound)
	}
	return clone(wp)
}

// SaveLevelStates updates level status and objectives together with the path flag
func (js *JSONStore) SaveLevelStates(ctx context.Context, path *models.WorldPath, levels []*models.Level) error {
	changed := make([]*models.Level, 0, len(levels))
	for _, l := range levels {
		c, err := clone(l)
		if err != nil {
			return fmt.Errorf("failed to copy level: %w", err)
		}
		changed = append(changed, c)
	}
	return js.commit(func(d *JSONData) error {
		stored, exists := d.WorldPaths[path.ID]
		if !exists {
			return fmt.Errorf("world path %s: %w", path.ID, ErrNotFound)
		}
		for _, l := range changed {
			current := stored.Level(l.ID)
			if current == nil {
				return fmt.Errorf("level %s in path %s: %w", l.ID, path.ID, ErrNotFound)
			}
			current.Status = l.Status
			current.Objectives = l.Objectives
		}
		stored.Completed = path.Completed
		return nil
	})
}

// SaveTask upserts a task
func (js *JSONStore) SaveTask(ctx context.Context, task *models.Task) error {
	t, err := clone(task)
	if err != nil {
		return fmt.Errorf("failed to copy task: %w", err)
	}
	return js.commit(func(d *JSONData) error {
		d.Tasks[taskKey(t.OwnerID, t.ID)] = t
		return nil
	})
}

// Tasks returns the owner's tasks ordered by id
func (js *JSONStore) Tasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	var tasks []models.Task
	for _, t := range js.data.Tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Stats derives the owner's counters from stored completions
func (js *JSONStore) Stats(ctx context.Context, ownerID string) (models.Stats, error) {
	tasks, err := js.Tasks(ctx, ownerID)
	if err != nil {
		return models.Stats{}, err
	}
	return SummarizeCompletions(completionTimes(tasks), js.now()), nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}

// taskKey scopes task ids to their owner; two owners may use the same id.
func taskKey(ownerID, taskID string) string {
	return ownerID + "/" + taskID
}

func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
