package settings

import "fmt"

// Search configuration defaults and limits.
const (
	DefaultMaxResults     = 50
	DefaultMinQueryLength = 3
	MaxMaxResults         = 1000
	// DefaultFieldWeight applies to columns without an explicit weight.
	DefaultFieldWeight = 1.0
)

// Config is the per-resource search configuration. The engine only reads it.
type Config struct {
	EnableIndexHint        bool
	MaxResults             int
	PrioritizeExactMatches bool
	UseFuzzy               bool
	MinQueryLength         int
	FieldWeights           map[string]float64
}

// Default returns the configuration used when a resource declares none.
func Default() Config {
	return Config{
		MaxResults:             DefaultMaxResults,
		PrioritizeExactMatches: true,
		MinQueryLength:         DefaultMinQueryLength,
	}
}

// Validate checks limits and weights.
func (c Config) Validate() error {
	if c.MaxResults <= 0 || c.MaxResults > MaxMaxResults {
		return fmt.Errorf("max_results must be in [1, %d], got %d", MaxMaxResults, c.MaxResults)
	}
	if c.MinQueryLength < 0 {
		return fmt.Errorf("min_query_length must not be negative")
	}
	for f, w := range c.FieldWeights {
		if w <= 0 {
			return fmt.Errorf("weight for %q must be positive, got %v", f, w)
		}
	}
	return nil
}

// Weight returns the weight of a field, DefaultFieldWeight when unset.
func (c Config) Weight(field string) float64 {
	if w, ok := c.FieldWeights[field]; ok {
		return w
	}
	return DefaultFieldWeight
}
