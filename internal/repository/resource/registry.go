package resource

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// Registry is an immutable, in-memory schema provider.
type Registry struct {
	byName map[string]schema.Resource
	order  []string
}

// New builds a registry; names must be unique.
func New(resources ...schema.Resource) (*Registry, error) {
	r := &Registry{byName: make(map[string]schema.Resource, len(resources))}
	for _, res := range resources {
		if _, dup := r.byName[res.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate resource %q", domain.ErrInvalidSchema, res.Name())
		}
		r.byName[res.Name()] = res
		r.order = append(r.order, res.Name())
	}
	return r, nil
}

// Load reads resource definitions from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes resource definitions. Unknown YAML keys are rejected.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parse resources: %v", domain.ErrInvalidSchema, err)
	}

	resources := make([]schema.Resource, 0, len(doc.Resources))
	for _, rd := range doc.Resources {
		res, err := rd.toDomain()
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return New(resources...)
}

// Get returns the resource named name.
func (r *Registry) Get(_ context.Context, name string) (schema.Resource, error) {
	res, ok := r.byName[name]
	if !ok {
		return schema.Resource{}, fmt.Errorf("%w: %q", domain.ErrResourceNotFound, name)
	}
	return res, nil
}

// List returns resources in declaration order.
func (r *Registry) List(_ context.Context) []schema.Resource {
	out := make([]schema.Resource, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}
