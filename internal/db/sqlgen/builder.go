package sqlgen

import "strconv"

// PlaceholderStyle selects the bind parameter syntax.
type PlaceholderStyle int

const (
	// PlaceholderQuestion is `?` (SQLite, MySQL).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar is `$n` (Postgres).
	PlaceholderDollar
)

// Builder collects bind arguments while SQL text is assembled.
type Builder struct {
	Style PlaceholderStyle
	args  []any
}

// NewBuilder creates a Builder for the given style.
func NewBuilder(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0, 8)}
}

// Arg records v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if b.Style == PlaceholderDollar {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// Args returns the recorded arguments in placeholder order.
func (b *Builder) Args() []any { return b.args }

// Statement is compiled SQL with its arguments.
type Statement struct {
	SQL  string
	Args []any
}
