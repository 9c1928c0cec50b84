// Package responsedb loads an annotated survey table into an in-memory
// SQLite database and answers lookups by user id. The CSV file stays the
// source of truth; the database lives only for one command.
package responsedb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/usermap/internal/survey"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// ErrClosed is returned by lookups after Close.
var ErrClosed = errors.New("response database is closed")

// Record is one stored row. Fields are in the table's header order and
// include the user id column.
type Record struct {
	Position int
	UserID   *int
	Fields   []string
}

// DB holds the loaded responses.
type DB struct {
	mu     sync.RWMutex
	db     *sql.DB
	header []string
}

// Open creates the database and loads tbl into it. userIDColumn names the
// column holding user ids; it must exist and hold integers or blanks.
func Open(tbl *types.Table, userIDColumn string) (*DB, error) {
	idCol := tbl.ColumnIndex(userIDColumn)
	if idCol < 0 {
		return nil, fmt.Errorf("%w: missing user id column %q", types.ErrSchema, userIDColumn)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL(len(tbl.Header))); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	if err := load(db, tbl, idCol); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db, header: tbl.Header}, nil
}

func load(db *sql.DB, tbl *types.Table, idCol int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSQL(len(tbl.Header)))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(tbl.Header)+2)
	for i, row := range tbl.Rows {
		id, err := parseUserID(row.Fields[idCol])
		if err != nil {
			// Line numbers count the header row.
			return fmt.Errorf("%w: line %d: %w", types.ErrParse, i+2, err)
		}
		args[0] = i
		args[1] = id
		for c, f := range row.Fields {
			args[c+2] = f
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func parseUserID(s string) (any, error) {
	s = survey.NormalizeField(s)
	if s == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("user id %q is not an integer", s)
	}
	return id, nil
}

// Header returns the column names of stored records.
func (d *DB) Header() []string {
	return d.header
}

// RowsForUser returns every record carrying userID, in table order.
func (d *DB) RowsForUser(userID int) ([]Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, ErrClosed
	}

	rows, err := d.db.Query(selectByUserSQL(len(d.header)), userID)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := d.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UserIDs returns the distinct user ids present, ascending.
func (d *DB) UserIDs() ([]int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, ErrClosed
	}

	rows, err := d.db.Query(selectUserIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored records.
func (d *DB) Count() (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM responses").Scan(&n)
	return n, err
}

// Close releases the database. Idempotent.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *DB) scan(rows *sql.Rows) (Record, error) {
	var (
		pos int
		id  sql.NullInt64
	)
	fields := make([]string, len(d.header))
	dest := make([]any, 0, len(fields)+2)
	dest = append(dest, &pos, &id)
	for i := range fields {
		dest = append(dest, &fields[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return Record{}, fmt.Errorf("scan response: %w", err)
	}
	rec := Record{Position: pos, Fields: fields}
	if id.Valid {
		rec.UserID = types.IntPtr(int(id.Int64))
	}
	return rec, nil
}

// columnList returns "c0, c1, ..." for n CSV columns.
func columnList(n int) string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = "c" + strconv.Itoa(i)
	}
	return strings.Join(cols, ", ")
}
