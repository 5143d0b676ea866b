package proto

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Change operations carried by ChangeEvent.Op.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

type FetchRequest struct {
	Table   string
	OrderBy string
	Desc    bool
	Filter  map[string]any
}

func (r FetchRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"table":    r.Table,
		"order_by": r.OrderBy,
		"desc":     r.Desc,
		"filter":   orEmpty(r.Filter),
	})
}

func ParseFetchRequest(s *structpb.Struct) FetchRequest {
	m := s.AsMap()
	return FetchRequest{
		Table:   str(m["table"]),
		OrderBy: str(m["order_by"]),
		Desc:    m["desc"] == true,
		Filter:  obj(m["filter"]),
	}
}

// WriteRequest carries a row for Insert and Upsert.
type WriteRequest struct {
	Table  string
	Record map[string]any
}

func (r WriteRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"table":  r.Table,
		"record": orEmpty(r.Record),
	})
}

func ParseWriteRequest(s *structpb.Struct) WriteRequest {
	m := s.AsMap()
	return WriteRequest{Table: str(m["table"]), Record: obj(m["record"])}
}

type DeleteRequest struct {
	Table string
	ID    string
}

func (r DeleteRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"table": r.Table, "id": r.ID})
}

func ParseDeleteRequest(s *structpb.Struct) DeleteRequest {
	m := s.AsMap()
	return DeleteRequest{Table: str(m["table"]), ID: str(m["id"])}
}

type SubscribeRequest struct {
	Table  string
	Filter map[string]any
}

func (r SubscribeRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"table": r.Table, "filter": orEmpty(r.Filter)})
}

func ParseSubscribeRequest(s *structpb.Struct) SubscribeRequest {
	m := s.AsMap()
	return SubscribeRequest{Table: str(m["table"]), Filter: obj(m["filter"])}
}

// ChangeEvent reports a row change on a table.
type ChangeEvent struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
	// Row holds the changed row for event filtering; it is not sent.
	Row map[string]any `json:"row,omitempty"`
}

func (e ChangeEvent) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"table": e.Table, "op": e.Op, "id": e.ID})
}

func ParseChangeEvent(s *structpb.Struct) ChangeEvent {
	m := s.AsMap()
	return ChangeEvent{Table: str(m["table"]), Op: str(m["op"]), ID: str(m["id"])}
}

type PresignRequest struct {
	Name string
}

func (r PresignRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"name": r.Name})
}

func ParsePresignRequest(s *structpb.Struct) PresignRequest {
	return PresignRequest{Name: str(s.AsMap()["name"])}
}

type PresignResponse struct {
	URL string
	Key string
}

func (r PresignResponse) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"url": r.URL, "key": r.Key})
}

func ParsePresignResponse(s *structpb.Struct) PresignResponse {
	m := s.AsMap()
	return PresignResponse{URL: str(m["url"]), Key: str(m["key"])}
}

// Rows converts a list of struct values into plain maps, skipping anything
// that is not an object.
func Rows(l *structpb.ListValue) []map[string]any {
	out := make([]map[string]any, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		if s := v.GetStructValue(); s != nil {
			out = append(out, s.AsMap())
		}
	}
	return out
}

// RowList is the inverse of Rows.
func RowList(rows []map[string]any) (*structpb.ListValue, error) {
	values := make([]*structpb.Value, 0, len(rows))
	for _, r := range rows {
		s, err := structpb.NewStruct(r)
		if err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return &structpb.ListValue{Values: values}, nil
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

func obj(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
