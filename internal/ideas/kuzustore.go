//go:build cgo

package ideas

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// KuzuStore implements Repository on an embedded KuzuDB. It requires CGO
// because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex
	db   *kuzu.Database
	conn *kuzu.Connection
	opts options
}

// Compile-time check that KuzuStore satisfies Repository.
var _ Repository = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore(opts ...Option) (*KuzuStore, error) {
	return openKuzu(":memory:", opts)
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// dbPath. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string, opts ...Option) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath, opts)
}

func openKuzu(path string, opts []Option) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn, opts: buildOptions(opts)}
	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema ----------

// sectionColumns maps each section key to its column in the Idea table.
var sectionColumns = map[plan.SectionKey]string{
	plan.KeyClarifiedIdea:         "clarified_idea",
	plan.KeyPRD:                   "prd",
	plan.KeyMVPScope:              "mvp_scope",
	plan.KeyCompetitors:           "competitors",
	plan.KeyValidation:            "validation",
	plan.KeyRoadmap:               "roadmap",
	plan.KeyTimeline:              "timeline",
	plan.KeyImplementationPrompts: "implementation_prompts",
}

func ideaDDL() string {
	var b strings.Builder
	b.WriteString(`CREATE NODE TABLE IF NOT EXISTS Idea(
		id STRING,
		name STRING,
		raw_idea STRING,
		settings STRING,
		section_meta STRING,
		created_at INT64,
		updated_at INT64,`)
	for _, k := range plan.Keys() {
		fmt.Fprintf(&b, "\n\t\t%s STRING,", sectionColumns[k])
	}
	b.WriteString("\n\t\tPRIMARY KEY(id)\n\t)")
	return b.String()
}

func (s *KuzuStore) initSchema() error {
	res, err := s.conn.Query(ideaDDL())
	if err != nil {
		return fmt.Errorf("kuzu: init schema: %w", err)
	}
	res.Close()
	return nil
}

// ---------- Repository ----------

// List returns summaries ordered by updated_at descending.
func (s *KuzuStore) List(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (i:Idea)
		 RETURN i.id, i.name, i.raw_idea, i.created_at, i.updated_at
		 ORDER BY i.updated_at DESC, i.id`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{
			ID:        toString(r[0]),
			Name:      toString(r[1]),
			RawIdea:   toString(r[2]),
			CreatedAt: fromMillis(r[3]),
			UpdatedAt: fromMillis(r[4]),
		})
	}
	return out, nil
}

// Get returns the full record.
func (s *KuzuStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *KuzuStore) get(id string) (*Record, error) {
	cols := []string{"i.id", "i.name", "i.raw_idea", "i.settings", "i.section_meta", "i.created_at", "i.updated_at"}
	for _, k := range plan.Keys() {
		cols = append(cols, "i."+sectionColumns[k])
	}
	rows, err := s.query(
		"MATCH (i:Idea {id: $id}) RETURN "+strings.Join(cols, ", "),
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r := rows[0]
	rec := &Record{
		ID:          toString(r[0]),
		Name:        toString(r[1]),
		RawIdea:     toString(r[2]),
		Settings:    toString(r[3]),
		SectionMeta: toString(r[4]),
		CreatedAt:   fromMillis(r[5]),
		UpdatedAt:   fromMillis(r[6]),
	}
	for i, k := range plan.Keys() {
		if v := toString(r[7+i]); v != "" {
			if rec.Sections == nil {
				rec.Sections = make(map[plan.SectionKey]string)
			}
			rec.Sections[k] = v
		}
	}
	return rec, nil
}

// Create inserts an Idea node with empty section columns.
func (s *KuzuStore) Create(_ context.Context, idea NewIdea) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID(idea.ID)
	exists, err := s.exists(id)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("ideas: record %s already exists", id)
	}

	now := s.opts.now().UnixMilli()
	var cols strings.Builder
	params := map[string]any{
		"id":       id,
		"name":     idea.Name,
		"raw":      idea.RawIdea,
		"settings": idea.Settings,
		"now":      now,
	}
	for _, k := range plan.Keys() {
		col := sectionColumns[k]
		fmt.Fprintf(&cols, ", %s: $%s", col, col)
		params[col] = ""
	}
	err = s.exec(
		`CREATE (i:Idea {id: $id, name: $name, raw_idea: $raw, settings: $settings,
			section_meta: '', created_at: $now, updated_at: $now`+cols.String()+`})`,
		params,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update applies p with a single SET statement.
func (s *KuzuStore) Update(_ context.Context, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(p.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = s.opts.now()
	}
	sets := []string{"i.updated_at = $updated"}
	params := map[string]any{"id": p.ID, "updated": updated.UnixMilli()}
	if p.Name != nil {
		sets = append(sets, "i.name = $name")
		params["name"] = *p.Name
	}
	if p.RawIdea != nil {
		sets = append(sets, "i.raw_idea = $raw")
		params["raw"] = *p.RawIdea
	}
	if p.Settings != nil {
		sets = append(sets, "i.settings = $settings")
		params["settings"] = *p.Settings
	}
	if p.SectionMeta != nil {
		sets = append(sets, "i.section_meta = $meta")
		params["meta"] = *p.SectionMeta
	}
	for _, k := range plan.Keys() {
		v, ok := p.Sections[k]
		if !ok {
			continue
		}
		col := sectionColumns[k]
		sets = append(sets, fmt.Sprintf("i.%s = $%s", col, col))
		params[col] = v
	}

	return s.exec("MATCH (i:Idea {id: $id}) SET "+strings.Join(sets, ", "), params)
}

// Remove deletes the Idea node.
func (s *KuzuStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.exec("MATCH (i:Idea {id: $id}) DELETE i", map[string]any{"id": id})
}

// ---------- Internal helpers ----------

func (s *KuzuStore) exists(id string) (bool, error) {
	rows, err := s.query("MATCH (i:Idea {id: $id}) RETURN count(i)", map[string]any{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && toInt(rows[0][0]) > 0, nil
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column
// order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string, nil).

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func fromMillis(v any) time.Time {
	switch n := v.(type) {
	case int64:
		return time.UnixMilli(n).UTC()
	case int:
		return time.UnixMilli(int64(n)).UTC()
	default:
		return time.Time{}
	}
}
