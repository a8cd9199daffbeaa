package strategy

// Strategy is the matching path the search cascade took.
type Strategy string

// Strategy constants.
const (
	// Empty means the query was too short or no columns resolved.
	Empty Strategy = "empty"
	// Fuzzy ranks by full-text relevance and trigram similarity.
	Fuzzy Strategy = "fuzzy"
	// ExactFirst places exact matches before substring matches.
	ExactFirst Strategy = "exact_first"
	// Contains is a plain substring match ordered by primary key.
	Contains Strategy = "contains"
)

// IsValid checks if the strategy is one of the known values.
func (s Strategy) IsValid() bool {
	return s == Empty || s == Fuzzy || s == ExactFirst || s == Contains
}

// IsRanked reports whether the strategy fixes the row order itself.
func (s Strategy) IsRanked() bool { return s != Empty }
