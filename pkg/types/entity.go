package types

// EntityBag is the structured output of text analysis: the sets of named
// things mentioned in a piece of text. All fields may be empty; an empty bag
// is the fail-soft result when extraction is unavailable or malformed.
type EntityBag struct {
	People        []string `json:"people"`
	Dates         []string `json:"dates"`
	Topics        []string `json:"topics"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
}

// IsEmpty reports whether the bag contains no entities at all.
func (b EntityBag) IsEmpty() bool {
	return len(b.People) == 0 && len(b.Dates) == 0 && len(b.Topics) == 0 &&
		len(b.Locations) == 0 && len(b.Organizations) == 0
}
