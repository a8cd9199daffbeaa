package schema

// ResolveSearchColumns intersects the requested column names with the
// resource's searchable fields. With no request the declared default order is
// used; otherwise the request order is kept. Unknown or non-searchable names
// are returned separately so the caller can record them.
func (r Resource) ResolveSearchColumns(requested []string) (resolved []Field, dropped []string) {
	if len(requested) == 0 {
		for _, n := range r.defaultSearch {
			f, _ := r.Field(n)
			resolved = append(resolved, f)
		}
		return resolved, nil
	}

	seen := make(map[string]bool, len(requested))
	for _, n := range requested {
		if seen[n] {
			continue
		}
		seen[n] = true
		f, ok := r.Field(n)
		if !ok || !f.IsSearchable() {
			dropped = append(dropped, n)
			continue
		}
		resolved = append(resolved, f)
	}
	return resolved, dropped
}

// ResolveFields looks up each name, returning declared fields in request
// order and the undeclared names.
func (r Resource) ResolveFields(names []string) (resolved []Field, dropped []string) {
	for _, n := range names {
		f, ok := r.Field(n)
		if !ok {
			dropped = append(dropped, n)
			continue
		}
		resolved = append(resolved, f)
	}
	return resolved, dropped
}
