package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"taskrealm/server/models"
)

// Compile-time check
var _ Storage = (*PostgresStore)(nil)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(ctx context.Context, connectionString string, pool PoolConfig, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger.Named("PostgresStore"), now: time.Now}

	// Initialize the database schema
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.logger.Info("Postgres store ready")
	return store, nil
}

// initSchema initializes the database schema
func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS areas (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		theme_key TEXT NOT NULL,
		target_nodes INTEGER NOT NULL,
		nodes_explored INTEGER NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(owner_id, sequence)
	);

	CREATE TABLE IF NOT EXISTS area_nodes (
		area_id TEXT REFERENCES areas(id) ON DELETE CASCADE,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		node_type TEXT NOT NULL,
		connections TEXT[] NOT NULL,
		unlocked BOOLEAN NOT NULL DEFAULT FALSE,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		objective JSONB,
		PRIMARY KEY(area_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS adventure_progress (
		owner_id TEXT PRIMARY KEY,
		current_area_id TEXT,
		current_x INTEGER NOT NULL,
		current_y INTEGER NOT NULL,
		areas_completed INTEGER NOT NULL DEFAULT 0,
		nodes_explored INTEGER NOT NULL DEFAULT 0,
		bosses_defeated INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS world_paths (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		world_sequence INTEGER NOT NULL,
		theme_key TEXT NOT NULL,
		level_count INTEGER NOT NULL,
		mini_boss_position INTEGER NOT NULL,
		connections JSONB NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS world_levels (
		path_id TEXT REFERENCES world_paths(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		lane INTEGER NOT NULL,
		lane_count INTEGER NOT NULL,
		lane_offset DOUBLE PRECISION NOT NULL,
		branch_id TEXT NOT NULL DEFAULT '',
		level_type TEXT NOT NULL,
		objectives JSONB NOT NULL,
		reward INTEGER NOT NULL,
		status TEXT NOT NULL,
		enemy JSONB,
		PRIMARY KEY(path_id, id)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		owner_id TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		priority INTEGER NOT NULL DEFAULT 1,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		due_date TIMESTAMP WITH TIME ZONE,
		completed_date TIMESTAMP WITH TIME ZONE,
		PRIMARY KEY(owner_id, id)
	);
	`

	_, err := ps.db.ExecContext(ctx, schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func (ps *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				ps.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// SaveAreaGraph inserts an area with all its nodes and upserts progress
func (ps *PostgresStore) SaveAreaGraph(ctx context.Context, area *models.Area, progress *models.Progress) error {
	return ps.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO areas (id, owner_id, sequence, theme_key, target_nodes, nodes_explored, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			area.ID, area.OwnerID, area.Sequence, area.ThemeKey, area.TargetNodes,
			area.NodesExplored, area.Completed, area.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert area: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO area_nodes (area_id, x, y, node_type, connections, unlocked, completed, objective)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
		if err != nil {
			return fmt.Errorf("failed to prepare node insert: %w", err)
		}
		defer stmt.Close()

		for _, n := range area.SortedNodes() {
			objective, err := marshalObjective(n.Objective)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, area.ID, n.Coord.X, n.Coord.Y, string(n.Type),
				coordKeys(n.Connections), n.Unlocked, n.Completed, objective); err != nil {
				return fmt.Errorf("failed to insert node %s: %w", n.Coord, err)
			}
		}

		return upsertProgress(ctx, tx, progress)
	})
}

// LoadArea loads an area with all its nodes
func (ps *PostgresStore) LoadArea(ctx context.Context, areaID string) (*models.Area, error) {
	var area models.Area
	err := ps.db.QueryRowContext(ctx, `
	SELECT id, owner_id, sequence, theme_key, target_nodes, nodes_explored, completed, created_at
	FROM areas WHERE id = $1`, areaID).Scan(
		&area.ID, &area.OwnerID, &area.Sequence, &area.ThemeKey, &area.TargetNodes,
		&area.NodesExplored, &area.Completed, &area.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("area %s: %w", areaID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load area: %w", err)
	}

	rows, err := ps.db.QueryContext(ctx, `
	SELECT x, y, node_type, connections, unlocked, completed, objective
	FROM area_nodes WHERE area_id = $1`, areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load area nodes: %w", err)
	}
	defer rows.Close()

	area.Nodes = make(map[models.Coord]*models.Node)
	for rows.Next() {
		var (
			n           models.Node
			nodeType    string
			connections pq.StringArray
			objective   []byte
		)
		if err := rows.Scan(&n.Coord.X, &n.Coord.Y, &nodeType, &connections,
			&n.Unlocked, &n.Completed, &objective); err != nil {
			return nil, fmt.Errorf("failed to scan area node: %w", err)
		}
		n.Type = models.NodeType(nodeType)
		for _, key := range connections {
			c, err := models.ParseCoord(key)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.Coord, err)
			}
			n.Connections = append(n.Connections, c)
		}
		models.SortCoords(n.Connections)
		if len(objective) > 0 {
			var o models.Objective
			if err := json.Unmarshal(objective, &o); err != nil {
				return nil, fmt.Errorf("failed to unmarshal objective of node %s: %w", n.Coord, err)
			}
			n.Objective = &o
		}
		area.Nodes[n.Coord] = &n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate area nodes: %w", err)
	}
	return &area, nil
}

// LatestAreaSequence returns the owner's highest area sequence
func (ps *PostgresStore) LatestAreaSequence(ctx context.Context, ownerID string) (int, error) {
	var seq int
	err := ps.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) FROM areas WHERE owner_id = $1`, ownerID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to query area sequence: %w", err)
	}
	return seq, nil
}

// SaveNodeStates updates node flags, area counters and progress in one transaction
func (ps *PostgresStore) SaveNodeStates(ctx context.Context, area *models.Area, nodes []*models.Node, progress *models.Progress) error {
	return ps.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE areas SET nodes_explored = $2, completed = $3 WHERE id = $1`,
			area.ID, area.NodesExplored, area.Completed)
		if err != nil {
			return fmt.Errorf("failed to update area: %w", err)
		}
		if err := expectRows(res, "area "+area.ID); err != nil {
			return err
		}

		for _, n := range nodes {
			objective, err := marshalObjective(n.Objective)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `
			UPDATE area_nodes SET unlocked = $4, completed = $5, objective = $6
			WHERE area_id = $1 AND x = $2 AND y = $3`,
				area.ID, n.Coord.X, n.Coord.Y, n.Unlocked, n.Completed, objective)
			if err != nil {
				return fmt.Errorf("failed to update node %s: %w", n.Coord, err)
			}
			if err := expectRows(res, "node "+n.Coord.Key()); err != nil {
				return err
			}
		}

		return upsertProgress(ctx, tx, progress)
	})
}

// SaveProgress upserts an owner's progress
func (ps *PostgresStore) SaveProgress(ctx context.Context, progress *models.Progress) error {
	return upsertProgress(ctx, ps.db, progress)
}

func upsertProgress(ctx context.Context, q dbtx, p *models.Progress) error {
	_, err := q.ExecContext(ctx, `
	INSERT INTO adventure_progress (owner_id, current_area_id, current_x, current_y,
		areas_completed, nodes_explored, bosses_defeated, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner_id)
	DO UPDATE SET
		current_area_id = $2, current_x = $3, current_y = $4,
		areas_completed = $5, nodes_explored = $6, bosses_defeated = $7,
		updated_at = $8`,
		p.OwnerID, p.CurrentAreaID, p.CurrentNode.X, p.CurrentNode.Y,
		p.AreasCompleted, p.NodesExplored, p.BossesDefeated, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// LoadProgress loads an owner's progress
func (ps *PostgresStore) LoadProgress(ctx context.Context, ownerID string) (*models.Progress, error) {
	var (
		p      models.Progress
		areaID sql.NullString
	)
	err := ps.db.QueryRowContext(ctx, `
	SELECT owner_id, current_area_id, current_x, current_y, areas_completed,
		nodes_explored, bosses_defeated, updated_at
	FROM adventure_progress WHERE owner_id = $1`, ownerID).Scan(
		&p.OwnerID, &areaID, &p.CurrentNode.X, &p.CurrentNode.Y, &p.AreasCompleted,
		&p.NodesExplored, &p.BossesDefeated, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress for %s: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	p.CurrentAreaID = areaID.String
	return &p, nil
}

// SaveWorldPath stores a world path with its levels
func (ps *PostgresStore) SaveWorldPath(ctx context.Context, path *models.WorldPath) error {
	connections, err := json.Marshal(path.Connections)
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	return ps.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO world_paths (id, owner_id, world_sequence, theme_key, level_count,
			mini_boss_position, connections, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			path.ID, path.OwnerID, path.WorldSequence, path.ThemeKey, path.LevelCount,
			path.MiniBossPosition, string(connections), path.Completed, path.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert world path: %w", err)
		}

		for _, l := range path.Levels {
			objectives, err := json.Marshal(l.Objectives)
			if err != nil {
				return fmt.Errorf("failed to marshal objectives of level %s: %w", l.ID, err)
			}
			var enemy any
			if l.Enemy != nil {
				raw, err := json.Marshal(l.Enemy)
				if err != nil {
					return fmt.Errorf("failed to marshal enemy of level %s: %w", l.ID, err)
				}
				enemy = string(raw)
			}
			_, err = tx.ExecContext(ctx, `
			INSERT INTO world_levels (path_id, id, position, lane, lane_count, lane_offset,
				branch_id, level_type, objectives, reward, status, enemy)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				path.ID, l.ID, l.Position, l.Lane, l.LaneCount, l.Offset,
				l.BranchID, string(l.Type), string(objectives), l.Reward, string(l.Status), enemy)
			if err != nil {
				return fmt.Errorf("failed to insert level %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// LoadWorldPath loads a world path by ID
func (ps *PostgresStore) LoadWorldPath(ctx context.Context, pathID string) (*models.WorldPath, error) {
	var (
		path        models.WorldPath
		connections []byte
	)
	err := ps.db.QueryRowContext(ctx, `
	SELECT id, owner_id, world_sequence, theme_key, level_count, mini_boss_position,
		connections, completed, created_at
	FROM world_paths WHERE id = $1`, pathID).Scan(
		&path.ID, &path.OwnerID, &path.WorldSequence, &path.ThemeKey, &path.LevelCount,
		&path.MiniBossPosition, &connections, &path.Completed, &path.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("world path %s: %w", pathID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load world path: %w", err)
	}
	if err := json.Unmarshal(connections, &path.Connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}

	rows, err := ps.db.QueryContext(ctx, `
	SELECT id, position, lane, lane_count, lane_offset, branch_id, level_type,
		objectives, reward, status, enemy
	FROM world_levels WHERE path_id = $1 ORDER BY position, lane`, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l                 models.Level
			levelType, status string
			objectives, enemy []byte
		)
		if err := rows.Scan(&l.ID, &l.Position, &l.Lane, &l.LaneCount, &l.Offset, &l.BranchID,
			&levelType, &objectives, &l.Reward, &status, &enemy); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		l.Type = models.LevelType(levelType)
		l.Status = models.LevelStatus(status)
		if err := json.Unmarshal(objectives, &l.Objectives); err != nil {
			return nil, fmt.Errorf("failed to unmarshal objectives of level %s: %w", l.ID, err)
		}
		if len(enemy) > 0 {
			l.Enemy = &models.Enemy{}
			if err := json.Unmarshal(enemy, l.Enemy); err != nil {
				return nil, fmt.Errorf("failed to unmarshal enemy of level %s: %w", l.ID, err)
			}
		}
		path.Levels = append(path.Levels, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate levels: %w", err)
	}
	return &path, nil
}

// SaveLevelStates updates level status and objectives with the path flag
func (ps *PostgresStore) SaveLevelStates(ctx context.Context, path *models.WorldPath, levels []*models.Level) error {
	return ps.withTx(ctx, func(tx *sql.Tx) error {
		for _, l := range levels {
			objectives, err := json.Marshal(l.Objectives)
			if err != nil {
				return fmt.Errorf("failed to marshal objectives of level %s: %w", l.ID, err)
			}
			res, err := tx.ExecContext(ctx, `
			UPDATE world_levels SET status = $3, objectives = $4
			WHERE path_id = $1 AND id = $2`,
				path.ID, l.ID, string(l.Status), string(objectives))
			if err != nil {
				return fmt.Errorf("failed to update level %s: %w", l.ID, err)
			}
			if err := expectRows(res, "level "+l.ID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE world_paths SET completed = $2 WHERE id = $1`, path.ID, path.Completed)
		if err != nil {
			return fmt.Errorf("failed to update world path: %w", err)
		}
		return expectRows(res, "world path "+path.ID)
	})
}

// SaveTask upserts a task
func (ps *PostgresStore) SaveTask(ctx context.Context, task *models.Task) error {
	_, err := ps.db.ExecContext(ctx, `
	INSERT INTO tasks (id, owner_id, title, category, priority, completed, due_date, completed_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner_id, id)
	DO UPDATE SET
		title = $3, category = $4, priority = $5, completed = $6,
		due_date = $7, completed_date = $8`,
		task.ID, task.OwnerID, task.Title, task.Category, task.Priority,
		task.Completed, task.DueDate, task.CompletedDate)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Tasks returns the owner's tasks ordered by id
func (ps *PostgresStore) Tasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := ps.db.QueryContext(ctx, `
	SELECT id, owner_id, title, category, priority, completed, due_date, completed_date
	FROM tasks WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var (
			t              models.Task
			due, completed sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Category, &t.Priority,
			&t.Completed, &due, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		if completed.Valid {
			t.CompletedDate = &completed.Time
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Stats derives the owner's counters from completion dates
func (ps *PostgresStore) Stats(ctx context.Context, ownerID string) (models.Stats, error) {
	rows, err := ps.db.QueryContext(ctx, `
	SELECT completed_date FROM tasks
	WHERE owner_id = $1 AND completed AND completed_date IS NOT NULL`, ownerID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return models.Stats{}, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, t)
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, fmt.Errorf("failed to iterate completions: %w", err)
	}
	return SummarizeCompletions(completions, ps.now()), nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func marshalObjective(o *models.Objective) (any, error) {
	if o == nil {
		return nil, nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal objective: %w", err)
	}
	return string(raw), nil
}

func coordKeys(cs []models.Coord) pq.StringArray {
	keys := make(pq.StringArray, len(cs))
	for i, c := range cs {
		keys[i] = c.Key()
	}
	return keys
}

func expectRows(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
