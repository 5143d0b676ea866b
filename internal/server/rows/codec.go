package rows

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/common"
)

const isoDate = "2006-01-02"

// selectExpr renders c so that it scans into the destination of scanDest.
func selectExpr(c Column) string {
	switch c.Kind {
	case KindDate:
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD') AS %s", c.Name, c.Name)
	case KindJSON:
		return fmt.Sprintf("%s::text AS %s", c.Name, c.Name)
	default:
		return c.Name
	}
}

func selectList(t Table) string {
	exprs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		exprs[i] = selectExpr(c)
	}
	return strings.Join(exprs, ", ")
}

func scanDest(c Column) any {
	switch c.Kind {
	case KindInt:
		return new(sql.NullInt64)
	case KindTime:
		return new(sql.NullTime)
	default:
		return new(sql.NullString)
	}
}

// fromDest converts a scanned value to its wire form. SQL NULL becomes nil.
func fromDest(c Column, dest any) (any, error) {
	switch d := dest.(type) {
	case *sql.NullInt64:
		if !d.Valid {
			return nil, nil
		}
		return d.Int64, nil
	case *sql.NullTime:
		if !d.Valid {
			return nil, nil
		}
		return d.Time.UTC().Format(time.RFC3339Nano), nil
	case *sql.NullString:
		if !d.Valid {
			return nil, nil
		}
		if c.Kind != KindJSON {
			return d.String, nil
		}
		var v any
		if err := json.Unmarshal([]byte(d.String), &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.Name, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unexpected scan destination %T", dest)
}

func scanRow(t Table, scan func(dest ...any) error) (Row, error) {
	dest := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		dest[i] = scanDest(c)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(t.Columns))
	for i, c := range t.Columns {
		v, err := fromDest(c, dest[i])
		if err != nil {
			return nil, err
		}
		row[c.Name] = v
	}
	return row, nil
}

func invalid(c Column, v any) error {
	return fmt.Errorf("%s: unexpected value %v (%T): %w", c.Name, v, v, common.ErrInvalidArgument)
}

// toArg converts a wire value of column c to a query argument.
func toArg(c Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch c.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(c, v)
		}
		return s, nil

	case KindInt:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, invalid(c, v)
			}
			return int64(n), nil
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, invalid(c, v)
			}
			return i, nil
		}
		return nil, invalid(c, v)

	case KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(c, v)
		}
		t, err := time.Parse(isoDate, s)
		if err != nil {
			return nil, invalid(c, v)
		}
		return t, nil

	case KindTime:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(c, v)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, invalid(c, v)
		}
		return t, nil

	case KindJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, invalid(c, v)
		}
		return string(b), nil
	}
	return nil, invalid(c, v)
}
