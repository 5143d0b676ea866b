// Package rows stores dashboard rows in PostgreSQL for the backend. Tables
// and columns are restricted to a fixed allowlist; requests naming anything
// else are rejected before SQL is built.
package rows

import (
	"fmt"

	"github.com/dmitrijs2005/statusboard/internal/common"
)

// Row is one table row keyed by column name.
type Row = map[string]any

// Kind selects how a column is encoded on the wire and in SQL.
type Kind int

const (
	KindText Kind = iota
	KindInt
	// KindDate travels as "2006-01-02".
	KindDate
	// KindTime travels as RFC 3339 in UTC.
	KindTime
	// KindJSON is stored as jsonb and travels decoded.
	KindJSON
)

type Column struct {
	Name string
	Kind Kind
}

// Child is a dependent table removed together with its parent row.
type Child struct {
	Table  string
	Column string
}

type Table struct {
	Name    string
	Columns []Column
	// SerialID tables get their id from the database when a row is
	// inserted without one.
	SerialID bool
	Children []Child
}

var tables = map[string]Table{
	common.TableActions: {
		Name:     common.TableActions,
		SerialID: true,
		Columns: []Column{
			{"id", KindInt},
			{"description", KindText},
			{"follow_up", KindText},
			{"responsible", KindText},
			{"sector", KindText},
			{"due_date", KindDate},
			{"status", KindText},
			{"created_at", KindTime},
			{"updated_at", KindTime},
		},
		Children: []Child{
			{Table: common.TableTasks, Column: "action_id"},
			{Table: common.TableComments, Column: "action_id"},
		},
	},
	common.TableTasks: {
		Name: common.TableTasks,
		Columns: []Column{
			{"id", KindText},
			{"action_id", KindInt},
			{"title", KindText},
			{"description", KindText},
			{"responsible", KindText},
			{"sector", KindText},
			{"due_date", KindDate},
			{"status", KindText},
			{"sort_order", KindInt},
			{"comments", KindJSON},
			{"created_at", KindTime},
			{"updated_at", KindTime},
		},
	},
	common.TableComments: {
		Name: common.TableComments,
		Columns: []Column{
			{"id", KindText},
			{"action_id", KindInt},
			{"author", KindText},
			{"text", KindText},
			{"created_at", KindTime},
		},
	},
}

// Lookup returns the allowlisted table called name.
func Lookup(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%q: %w", name, common.ErrUnknownTable)
	}
	return t, nil
}

func (t Table) Column(name string) (Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%s has no column %q: %w", t.Name, name, common.ErrInvalidArgument)
}

// ID is the primary key column, always first.
func (t Table) ID() Column {
	return t.Columns[0]
}
