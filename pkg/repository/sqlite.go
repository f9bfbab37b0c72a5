package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	raw_text   TEXT NOT NULL,
	source     TEXT NOT NULL,
	summary    TEXT NOT NULL,
	people     TEXT NOT NULL,
	tasks      TEXT NOT NULL,
	topics     TEXT NOT NULL,
	decisions  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	embedding  BLOB NOT NULL,
	audio_uri  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at);
`

const memoryColumns = `id, raw_text, source, summary, people, tasks, topics, decisions, created_at, embedding, audio_uri`

// SQLite implements Repository on a local SQLite file. Nearest neighbors are
// computed exactly by scanning stored embeddings.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath
func NewSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory",
				goerr.V("path", dbPath),
				goerr.T(model.TagStoreUnavailable))
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath), goerr.T(model.TagStoreUnavailable))
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, goerr.Wrap(err, "failed to configure database", goerr.V("pragma", pragma), goerr.T(model.TagStoreUnavailable))
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.T(model.TagStoreUnavailable))
	}

	return &SQLite{db: db}, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) PutMemory(ctx context.Context, memory *model.Memory) error {
	lists := make([]string, 0, 4)
	for _, l := range [][]string{memory.People, memory.Tasks, memory.Topics, memory.Decisions} {
		raw, err := json.Marshal(l)
		if err != nil {
			return goerr.Wrap(err, "failed to encode entity list", goerr.V("id", memory.ID))
		}
		lists = append(lists, string(raw))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(memory.ID), memory.RawText, string(memory.Source), memory.Summary,
		lists[0], lists[1], lists[2], lists[3],
		memory.CreatedAt.UnixNano(), encodeVector(memory.Embedding), memory.AudioURI,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V("id", memory.ID), goerr.T(model.TagStoreUnavailable))
	}
	return nil
}

func (s *SQLite) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, string(id))

	memory, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(err, "memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id), goerr.T(model.TagStoreUnavailable))
	}

	return memory, nil
}

func (s *SQLite) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.T(model.TagStoreUnavailable))
	}
	defer rows.Close()

	var memories []*model.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory", goerr.T(model.TagStoreUnavailable))
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memories", goerr.T(model.TagStoreUnavailable))
	}

	return memories, nil
}

func (s *SQLite) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM memories`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan embeddings", goerr.T(model.TagStoreUnavailable))
	}
	defer rows.Close()

	var neighbors []*model.Neighbor
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, goerr.Wrap(err, "failed to scan embedding", goerr.T(model.TagStoreUnavailable))
		}
		neighbors = append(neighbors, &model.Neighbor{
			ID:         model.MemoryID(id),
			Similarity: cosineSimilarity(embedding, decodeVector(raw)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate embeddings", goerr.T(model.TagStoreUnavailable))
	}

	return rankNeighbors(neighbors, limit), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*model.Memory, error) {
	var (
		m                                model.Memory
		id, source                       string
		people, tasks, topics, decisions string
		createdAt                        int64
		embedding                        []byte
	)

	if err := row.Scan(&id, &m.RawText, &source, &m.Summary, &people, &tasks, &topics, &decisions, &createdAt, &embedding, &m.AudioURI); err != nil {
		return nil, err
	}

	m.ID = model.MemoryID(id)
	m.Source = model.Source(source)
	m.CreatedAt = time.Unix(0, createdAt)
	m.Embedding = decodeVector(embedding)

	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{people, &m.People},
		{tasks, &m.Tasks},
		{topics, &m.Topics},
		{decisions, &m.Decisions},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, goerr.Wrap(err, "failed to decode entity list", goerr.V("id", id))
		}
	}

	return &m, nil
}

// encodeVector stores float32 values as little-endian bytes
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
