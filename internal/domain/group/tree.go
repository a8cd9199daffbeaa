package group

import (
	"fmt"
	"time"
)

// AggregateRow is one row of a group-by pass: one value per grouped level,
// count(*) of the group and one value per summary descriptor (name order).
type AggregateRow struct {
	GroupValues []any
	Count       int64
	Summaries   []any
}

// Node is an output group. Items is nil for a terminal group and non-nil
// (possibly empty) for an expanded one; Count and Summary are only set on
// terminal groups.
type Node struct {
	Key     any    `json:"key"`
	Count   *int64 `json:"count,omitempty"`
	Summary []any  `json:"summary,omitempty"`
	Items   []Node `json:"items"`
}

type arenaNode struct {
	key      any
	count    *int64
	summary  []any
	branch   bool
	children []int
	index    map[string]int
}

// arena owns every node of one tree; children reference nodes by index.
type arena struct {
	nodes []arenaNode
	roots []int
	index map[string]int
}

func (a *arena) findOrCreate(parent int, key any) int {
	idx := a.index
	if parent >= 0 {
		if a.nodes[parent].index == nil {
			a.nodes[parent].index = make(map[string]int)
		}
		idx = a.nodes[parent].index
	}

	k := keyString(key)
	if i, ok := idx[k]; ok {
		return i
	}
	// append may move the backing array; address the parent by index after it
	a.nodes = append(a.nodes, arenaNode{key: key})
	i := len(a.nodes) - 1
	idx[k] = i
	if parent >= 0 {
		a.nodes[parent].children = append(a.nodes[parent].children, i)
	} else {
		a.roots = append(a.roots, i)
	}
	return i
}

// Format folds aggregate rows into a tree. Sibling order is first-seen
// order. Rows carrying fewer values than a level walk needs stop at their
// last value.
func Format(rows []AggregateRow, levels []Level) ([]Node, error) {
	a := &arena{index: make(map[string]int)}

	for r, row := range rows {
		if len(row.GroupValues) == 0 {
			return nil, fmt.Errorf("aggregate row %d has no group values", r)
		}
		if len(row.GroupValues) > len(levels) {
			return nil, fmt.Errorf("aggregate row %d has %d group values for %d levels", r, len(row.GroupValues), len(levels))
		}

		parent := -1
		for i, v := range row.GroupValues {
			n := a.findOrCreate(parent, normalizeKey(v))
			if levels[i].expanded {
				a.nodes[n].branch = true
				parent = n
				continue
			}
			count := row.Count
			a.nodes[n].count = &count
			a.nodes[n].summary = row.Summaries
			break
		}
	}

	return a.emit(a.roots), nil
}

func (a *arena) emit(ids []int) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		n := a.nodes[id]
		out[i] = Node{Key: n.key, Count: n.count, Summary: n.summary}
		if n.branch {
			out[i].Items = a.emit(n.children)
		}
	}
	return out
}

func normalizeKey(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func keyString(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case time.Time:
		return "time\x00" + x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%T\x00%v", v, v)
	}
}
