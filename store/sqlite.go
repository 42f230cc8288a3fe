package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerfoundry/ledgergate/domain"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations. Records are keyed by a hash of the
// agent id, with secondary indexes on the node-id hash and the owner.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS ledger_agents (
			id_hash TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL UNIQUE,
			node_hash TEXT NOT NULL,
			ledger_node_id TEXT NOT NULL,
			name TEXT,
			description TEXT,
			owner TEXT NOT NULL,
			public INTEGER NOT NULL DEFAULT 0,
			plugins TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_agents_node ON ledger_agents(node_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_agents_owner ON ledger_agents(owner)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func hashKey(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

// InsertAgent persists a new agent record.
func (s *SQLiteStore) InsertAgent(ctx context.Context, agent *domain.Agent) error {
	plugins, _ := json.Marshal(agent.Plugins)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_agents (id_hash, agent_id, node_hash, ledger_node_id, name, description, owner, public, plugins, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hashKey(agent.AgentID), agent.AgentID, hashKey(agent.LedgerNodeID), agent.LedgerNodeID,
		agent.Name, agent.Description, agent.Owner, agent.Public, string(plugins), agent.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			return &domain.DuplicateAgentError{AgentID: agent.AgentID, LedgerNodeID: agent.LedgerNodeID}
		}
		return err
	}
	return nil
}

// FindAgent retrieves an agent record by id, including soft-deleted ones.
func (s *SQLiteStore) FindAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	var agent domain.Agent
	var name, description, plugins sql.NullString
	var deletedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT agent_id, ledger_node_id, name, description, owner, public, plugins, created_at, deleted_at
		 FROM ledger_agents WHERE id_hash = ?`,
		hashKey(agentID)).Scan(&agent.AgentID, &agent.LedgerNodeID, &name, &description,
		&agent.Owner, &agent.Public, &plugins, &agent.CreatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if name.Valid {
		agent.Name = name.String
	}
	if description.Valid {
		agent.Description = description.String
	}
	if plugins.Valid && plugins.String != "" && plugins.String != "null" {
		if err := json.Unmarshal([]byte(plugins.String), &agent.Plugins); err != nil {
			return nil, fmt.Errorf("failed to decode plugins for %s: %w", agentID, err)
		}
	}
	if deletedAt.Valid {
		agent.DeletedAt = &deletedAt.Int64
	}
	return &agent, nil
}

// MarkAgentDeleted sets the deletion timestamp on a record.
func (s *SQLiteStore) MarkAgentDeleted(ctx context.Context, agentID string, when int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE ledger_agents SET deleted_at = ? WHERE id_hash = ?`,
		when, hashKey(agentID))
	return err
}

// AgentIDs returns a page of non-deleted agent ids matching the filter.
func (s *SQLiteStore) AgentIDs(ctx context.Context, filter AgentFilter, afterID string, limit int) ([]string, error) {
	query := `SELECT agent_id FROM ledger_agents WHERE deleted_at IS NULL`
	args := []interface{}{}

	if len(filter.Owners) > 0 {
		placeholders := make([]string, len(filter.Owners))
		for i, o := range filter.Owners {
			placeholders[i] = "?"
			args = append(args, o)
		}
		query += fmt.Sprintf(" AND owner IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.Public != nil {
		query += ` AND public = ?`
		args = append(args, *filter.Public)
	}
	if afterID != "" {
		query += ` AND agent_id > ?`
		args = append(args, afterID)
	}

	query += ` ORDER BY agent_id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
