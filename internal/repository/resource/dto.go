package resource

import (
	"fmt"

	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/settings"
)

// fileDoc is the YAML layout of a resource definitions file.
type fileDoc struct {
	Resources []resourceDoc `yaml:"resources"`
}

type resourceDoc struct {
	Name             string     `yaml:"name"`
	Table            string     `yaml:"table"`
	PrimaryKey       string     `yaml:"primary_key"`
	SoftDeleteColumn string     `yaml:"soft_delete_column"`
	TenantColumn     string     `yaml:"tenant_column"`
	DefaultSearch    []string   `yaml:"default_search"`
	Fields           []fieldDoc `yaml:"fields"`
	Search           *searchDoc `yaml:"search"`
}

type fieldDoc struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Kind       string `yaml:"kind"`
	Searchable bool   `yaml:"searchable"`
	Sortable   bool   `yaml:"sortable"`
	Filterable *bool  `yaml:"filterable"`
}

// searchDoc overrides settings.Default() field by field.
type searchDoc struct {
	EnableIndexHint        *bool              `yaml:"enable_index_hint"`
	MaxResults             *int               `yaml:"max_results"`
	PrioritizeExactMatches *bool              `yaml:"prioritize_exact_matches"`
	UseFuzzy               *bool              `yaml:"use_fuzzy"`
	MinQueryLength         *int               `yaml:"min_query_length"`
	FieldWeights           map[string]float64 `yaml:"field_weights"`
}

func (d searchDoc) toConfig() settings.Config {
	cfg := settings.Default()
	if d.EnableIndexHint != nil {
		cfg.EnableIndexHint = *d.EnableIndexHint
	}
	if d.MaxResults != nil {
		cfg.MaxResults = *d.MaxResults
	}
	if d.PrioritizeExactMatches != nil {
		cfg.PrioritizeExactMatches = *d.PrioritizeExactMatches
	}
	if d.UseFuzzy != nil {
		cfg.UseFuzzy = *d.UseFuzzy
	}
	if d.MinQueryLength != nil {
		cfg.MinQueryLength = *d.MinQueryLength
	}
	if len(d.FieldWeights) > 0 {
		cfg.FieldWeights = d.FieldWeights
	}
	return cfg
}

func (d resourceDoc) toDomain() (schema.Resource, error) {
	fields := make([]schema.Field, 0, len(d.Fields))
	for _, fd := range d.Fields {
		var opts []schema.FieldOption
		if fd.Column != "" {
			opts = append(opts, schema.WithColumn(fd.Column))
		}
		if fd.Searchable {
			opts = append(opts, schema.Searchable())
		}
		if fd.Sortable {
			opts = append(opts, schema.Sortable())
		}
		if fd.Filterable != nil && !*fd.Filterable {
			opts = append(opts, schema.NotFilterable())
		}
		f, err := schema.NewField(fd.Name, schema.Kind(fd.Kind), opts...)
		if err != nil {
			return schema.Resource{}, fmt.Errorf("resource %q: %w", d.Name, err)
		}
		fields = append(fields, f)
	}

	var opts []schema.ResourceOption
	if d.PrimaryKey != "" {
		opts = append(opts, schema.WithPrimaryKey(d.PrimaryKey))
	}
	if d.SoftDeleteColumn != "" {
		opts = append(opts, schema.WithSoftDelete(d.SoftDeleteColumn))
	}
	if d.TenantColumn != "" {
		opts = append(opts, schema.WithTenantColumn(d.TenantColumn))
	}
	if len(d.DefaultSearch) > 0 {
		opts = append(opts, schema.WithDefaultSearch(d.DefaultSearch...))
	}
	if d.Search != nil {
		opts = append(opts, schema.WithSearchConfig(d.Search.toConfig()))
	}
	return schema.NewResource(d.Name, d.Table, fields, opts...)
}
