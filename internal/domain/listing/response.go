package listing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/gridex/internal/domain/group"
)

// View names the pipeline branch that produced a response.
type View string

// Views.
const (
	ViewFlat    View = "flat"
	ViewSearch  View = "search"
	ViewGrouped View = "grouped"
)

// Response is the listing payload. Rows is used by the flat and search
// views, Groups by the grouped view.
type Response struct {
	View       View
	Rows       []map[string]any
	Groups     []group.Node
	TotalCount *int64
	GroupCount *int64
	Summary    []any
}

type flatWire struct {
	Data       []map[string]any `json:"data"`
	TotalCount *int64           `json:"totalCount,omitempty"`
	Summary    []any            `json:"summary,omitempty"`
}

type groupedWire struct {
	Data       []group.Node `json:"data"`
	GroupCount *int64       `json:"groupCount,omitempty"`
	TotalCount *int64       `json:"totalCount,omitempty"`
}

// MarshalJSON renders {data, totalCount?, summary?} for flat and search
// views and {data, groupCount?, totalCount?} for the grouped view.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.View == ViewGrouped {
		data := r.Groups
		if data == nil {
			data = []group.Node{}
		}
		return json.Marshal(groupedWire{Data: data, GroupCount: r.GroupCount, TotalCount: r.TotalCount})
	}
	data := r.Rows
	if data == nil {
		data = []map[string]any{}
	}
	return json.Marshal(flatWire{Data: data, TotalCount: r.TotalCount, Summary: r.Summary})
}

// DecodeResponse parses a payload produced by MarshalJSON. Numbers decode
// as json.Number so they re-encode unchanged.
func DecodeResponse(view View, data []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	switch view {
	case ViewGrouped:
		var w groupedWire
		if err := dec.Decode(&w); err != nil {
			return Response{}, fmt.Errorf("decode grouped response: %w", err)
		}
		return Response{View: view, Groups: w.Data, GroupCount: w.GroupCount, TotalCount: w.TotalCount}, nil
	case ViewFlat, ViewSearch:
		var w flatWire
		if err := dec.Decode(&w); err != nil {
			return Response{}, fmt.Errorf("decode %s response: %w", view, err)
		}
		return Response{View: view, Rows: w.Data, TotalCount: w.TotalCount, Summary: w.Summary}, nil
	}
	return Response{}, fmt.Errorf("unknown view %q", view)
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
