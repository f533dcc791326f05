package report

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"modernc.org/sqlite/vtab"

	"github.com/syntax-tree/unist-util-is/internal/index"
)

// singleton holds the one ruleNodesModule registered with the SQLite driver.
var (
	once      sync.Once
	singleton *ruleNodesModule
	initErr   error

	nextReaderID atomic.Uint64
)

// Reader queries a report database. Besides the stored tables it exposes
// the rule_nodes virtual table (rule, ordinal, path), which expands the
// rule bitmaps into one row per match.
type Reader struct {
	db    *sql.DB
	id    string
	index *index.Index
	paths map[uint32]string
}

// OpenReader opens the report database at dbPath.
func OpenReader(dbPath string) (*Reader, error) {
	mod, err := registerModule()
	if err != nil {
		return nil, err
	}

	x, err := LoadIndex(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// The virtual table lives in the temp schema of a single connection.
	db.SetMaxOpenConns(1)

	r := &Reader{
		db:    db,
		id:    fmt.Sprintf("report_%d", nextReaderID.Add(1)),
		index: x,
		paths: make(map[uint32]string),
	}

	rows, err := db.Query("SELECT DISTINCT ordinal, path FROM matches")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query matches: %w", err)
	}
	for rows.Next() {
		var (
			ordinal uint32
			path    string
		)
		if err := rows.Scan(&ordinal, &path); err != nil {
			_ = rows.Close()
			_ = db.Close()
			return nil, err
		}
		r.paths[ordinal] = path
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, err
	}
	_ = rows.Close()

	mod.register(r)
	query := fmt.Sprintf("CREATE VIRTUAL TABLE temp.rule_nodes USING rule_nodes(%s)", r.id)
	if _, err := db.Exec(query); err != nil {
		mod.unregister(r.id)
		_ = db.Close()
		return nil, fmt.Errorf("create rule_nodes vtab: %w", err)
	}
	return r, nil
}

// Index returns the rule bitmaps stored in the database.
func (r *Reader) Index() *index.Index {
	return r.index
}

// Query runs a SQL query against the database, including rule_nodes.
func (r *Reader) Query(query string, args ...any) (*sql.Rows, error) {
	return r.db.Query(query, args...)
}

// Close unregisters the virtual table and closes the database.
func (r *Reader) Close() error {
	if mod, err := registerModule(); err == nil && mod != nil {
		mod.unregister(r.id)
	}
	return r.db.Close()
}

// ruleNodesModule implements vtab.Module. It is a process-wide singleton
// because modernc.org/sqlite registers modules globally.
type ruleNodesModule struct {
	mu      sync.RWMutex
	readers map[string]*Reader
}

func registerModule() (*ruleNodesModule, error) {
	once.Do(func() {
		singleton = &ruleNodesModule{readers: make(map[string]*Reader)}
		if err := vtab.RegisterModule(nil, "rule_nodes", singleton); err != nil {
			initErr = fmt.Errorf("report: register module: %w", err)
			singleton = nil
		}
	})
	return singleton, initErr
}

func (m *ruleNodesModule) register(r *Reader) {
	m.mu.Lock()
	m.readers[r.id] = r
	m.mu.Unlock()
}

func (m *ruleNodesModule) unregister(id string) {
	m.mu.Lock()
	delete(m.readers, id)
	m.mu.Unlock()
}

// Create expects USING rule_nodes(id): argv[0] is the module name, argv[1]
// the database name, argv[2] the table name and argv[3] the reader ID.
func (m *ruleNodesModule) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("rule_nodes: missing reader ID argument (expected USING rule_nodes(id))")
	}
	id := args[3]

	m.mu.RLock()
	r, ok := m.readers[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("rule_nodes: unknown reader ID %q", id)
	}

	if err := ctx.Declare("CREATE TABLE x(rule TEXT, ordinal INTEGER, path TEXT)"); err != nil {
		return nil, err
	}
	return &ruleNodesTable{reader: r}, nil
}

func (m *ruleNodesModule) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type ruleNodesTable struct {
	reader *Reader
}

func (t *ruleNodesTable) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable || c.Column != 0 || c.Op != vtab.OpEQ {
			continue
		}
		// Rule equality lookup: one bitmap.
		c.ArgIndex = 0
		c.Omit = true
		info.IdxNum = 1
		info.EstimatedCost = 1
		info.EstimatedRows = 100
		return nil
	}
	info.IdxNum = 0
	info.EstimatedCost = 1e6
	info.EstimatedRows = 1e6
	return nil
}

func (t *ruleNodesTable) Open() (vtab.Cursor, error) {
	return &ruleNodesCursor{table: t}, nil
}

func (t *ruleNodesTable) Disconnect() error { return nil }
func (t *ruleNodesTable) Destroy() error    { return nil }

type ruleNodesRow struct {
	rule    string
	ordinal uint32
	path    string
}

type ruleNodesCursor struct {
	table *ruleNodesTable
	rows  []ruleNodesRow
	pos   int
}

func (c *ruleNodesCursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = c.rows[:0]
	c.pos = 0

	r := c.table.reader
	if idxNum == 1 {
		rule, ok := vals[0].(string)
		if !ok {
			return nil
		}
		c.expand(r, rule)
		return nil
	}
	for _, rule := range r.index.Rules() {
		c.expand(r, rule)
	}
	return nil
}

func (c *ruleNodesCursor) expand(r *Reader, rule string) {
	for _, ordinal := range r.index.Matches(rule) {
		c.rows = append(c.rows, ruleNodesRow{rule: rule, ordinal: ordinal, path: r.paths[ordinal]})
	}
}

func (c *ruleNodesCursor) Next() error {
	c.pos++
	return nil
}

func (c *ruleNodesCursor) Eof() bool {
	return c.pos >= len(c.rows)
}

func (c *ruleNodesCursor) Column(col int) (vtab.Value, error) {
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	row := c.rows[c.pos]
	switch col {
	case 0:
		return row.rule, nil
	case 1:
		return int64(row.ordinal), nil
	case 2:
		return row.path, nil
	default:
		return nil, nil
	}
}

func (c *ruleNodesCursor) Rowid() (int64, error) {
	return int64(c.pos), nil
}

func (c *ruleNodesCursor) Close() error {
	c.rows = nil
	return nil
}
