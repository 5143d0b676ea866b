package rows

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/dbx"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
)

type Repository interface {
	FetchAll(ctx context.Context, req pb.FetchRequest) ([]Row, error)
	Insert(ctx context.Context, table string, record Row) (Row, error)
	Upsert(ctx context.Context, table string, record Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FetchAll returns the rows of req.Table whose columns equal every filter
// value, ordered by req.OrderBy (id when empty) and then by id.
func (r *PostgresRepository) FetchAll(ctx context.Context, req pb.FetchRequest) ([]Row, error) {
	t, err := Lookup(req.Table)
	if err != nil {
		return nil, err
	}

	order := t.ID()
	if req.OrderBy != "" {
		if order, err = t.Column(req.OrderBy); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(req.Filter))
	for k := range req.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		where []string
		args  []any
	)
	for _, k := range keys {
		c, err := t.Column(k)
		if err != nil {
			return nil, err
		}
		v, err := toArg(c, req.Filter[k])
		if err != nil {
			return nil, err
		}
		if v == nil {
			where = append(where, c.Name+" IS NULL")
			continue
		}
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", c.Name, len(args)))
	}

	var q strings.Builder
	fmt.Fprintf(&q, "SELECT %s FROM %s", selectList(t), t.Name)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY " + order.Name)
	if req.Desc {
		q.WriteString(" DESC")
	}
	if order.Name != t.ID().Name {
		q.WriteString(", " + t.ID().Name)
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		row, err := scanRow(t, rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// columnsOf picks the allowlisted columns present in record, in table order.
// Unknown keys are rejected.
func columnsOf(t Table, record Row) ([]Column, []any, error) {
	for k := range record {
		if _, err := t.Column(k); err != nil {
			return nil, nil, err
		}
	}

	var (
		cols []Column
		args []any
	)
	for _, c := range t.Columns {
		v, ok := record[c.Name]
		if !ok {
			continue
		}
		if c.Name == t.ID().Name && v == nil {
			continue
		}
		arg, err := toArg(c, v)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, c)
		args = append(args, arg)
	}
	return cols, args, nil
}

func insertSQL(t Table, cols []Column) string {
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(names, ", "), strings.Join(params, ", "))
}

func hasID(t Table, cols []Column) bool {
	return len(cols) > 0 && cols[0].Name == t.ID().Name
}

// Insert adds a row and returns it as stored. Rows of SerialID tables may
// omit the id.
func (r *PostgresRepository) Insert(ctx context.Context, table string, record Row) (Row, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	cols, args, err := columnsOf(t, record)
	if err != nil {
		return nil, err
	}
	if !hasID(t, cols) && !t.SerialID {
		return nil, fmt.Errorf("%s: id is required: %w", t.Name, common.ErrInvalidArgument)
	}

	q := insertSQL(t, cols) + " RETURNING " + selectList(t)
	return scanRow(t, r.db.QueryRowContext(ctx, q, args...).Scan)
}

// Upsert inserts the row or replaces the columns it carries when the id
// already exists.
func (r *PostgresRepository) Upsert(ctx context.Context, table string, record Row) (Row, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	cols, args, err := columnsOf(t, record)
	if err != nil {
		return nil, err
	}
	if !hasID(t, cols) {
		return nil, fmt.Errorf("%s: id is required: %w", t.Name, common.ErrInvalidArgument)
	}

	id := t.ID().Name
	q := insertSQL(t, cols) + " ON CONFLICT (" + id + ") "
	if len(cols) == 1 {
		q += "DO UPDATE SET " + id + " = EXCLUDED." + id
	} else {
		sets := make([]string, 0, len(cols)-1)
		for _, c := range cols[1:] {
			sets = append(sets, c.Name+" = EXCLUDED."+c.Name)
		}
		q += "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	q += " RETURNING " + selectList(t)

	return scanRow(t, r.db.QueryRowContext(ctx, q, args...).Scan)
}

// Delete removes the row with the given id together with its children, in
// one transaction. A missing row is common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, table, id string) error {
	t, err := Lookup(table)
	if err != nil {
		return err
	}
	key, err := toArg(t.ID(), id)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, ch := range t.Children {
			q := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ch.Table, ch.Column)
			if _, err := tx.ExecContext(ctx, q, key); err != nil {
				return fmt.Errorf("delete %s of %s %s: %w", ch.Table, t.Name, id, err)
			}
		}

		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Name, t.ID().Name), key)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s %s: %w", t.Name, id, common.ErrorNotFound)
		}
		return nil
	})
}
