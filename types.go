package gridex

// FieldKind is the declared type of a resource field.
type FieldKind string

// Field kinds.
const (
	KindText     FieldKind = "text"
	KindNumeric  FieldKind = "numeric"
	KindDate     FieldKind = "date"
	KindBoolean  FieldKind = "boolean"
	KindRelation FieldKind = "relation"
)

// Resource declares one listable table.
type Resource struct {
	Name             string
	Table            string
	PrimaryKey       string // default "id"
	SoftDeleteColumn string
	TenantColumn     string
	DefaultSearch    []string
	Fields           []Field
	Search           *SearchConfig // nil = defaults
}

// Field declares one column of a Resource.
type Field struct {
	Name          string // public selector; defaults to Column
	Column        string
	Kind          FieldKind
	Searchable    bool
	Sortable      bool
	NotFilterable bool
}

// SearchConfig tunes the search cascade of a resource. A set Search
// replaces the defaults wholesale; start from DefaultSearchConfig.
type SearchConfig struct {
	EnableIndexHint        bool
	MaxResults             int
	PrioritizeExactMatches bool
	UseFuzzy               bool
	MinQueryLength         int
	FieldWeights           map[string]float64
}

// Params is one listing request.
type Params struct {
	Search string
	// Columns restricts the searched fields.
	Columns []string
	Filters []Filter
	Sort    string
	Desc    bool

	Group        []GroupLevel
	GroupSummary []Summary
	TotalSummary []Summary

	RequireGroupCount bool
	RequireTotalCount bool

	// Page and PageSize are 1-based; zero means unset.
	Page     int
	PageSize int
	// Skip and Take override Page/PageSize when Take > 0.
	Skip int
	Take int
}

// Filter keeps rows whose field equals one of Values.
type Filter struct {
	Field  string
	Values []any
}

// GroupLevel is one level of a grouped view.
type GroupLevel struct {
	Selector string
	// Interval buckets date fields: year, quarter, month, day, hour, minute.
	Interval string
	Expanded bool
	Desc     bool
}

// Summary is an aggregate: count, sum, min, max or avg.
type Summary struct {
	Type     string
	Selector string
}

// Response is a listing result. Rows is set for flat and search views,
// Groups for grouped views.
type Response struct {
	View       string
	Rows       []map[string]any
	Groups     []Group
	TotalCount *int64
	GroupCount *int64
	Summary    []any
}

// Group is one node of a grouped view. Leaf nodes carry Count; expanded
// nodes carry Items.
type Group struct {
	Key     any
	Count   *int64
	Summary []any
	Items   []Group
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}
