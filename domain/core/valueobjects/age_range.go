package valueobjects

import "fmt"

// AgeRange is one of five ordered age buckets. The buckets behave as
// ordinal positions when scoring: adjacent buckets are considered close,
// opposite ends of the scale are maximally distant.
type AgeRange string

const (
	AgeRange18To24 AgeRange = "18-24"
	AgeRange25To34 AgeRange = "25-34"
	AgeRange35To44 AgeRange = "35-44"
	AgeRange45To54 AgeRange = "45-54"
	AgeRange55Plus AgeRange = "55+"
)

// ageRangeOrdinals maps each bucket to its position on the ordinal scale.
var ageRangeOrdinals = map[AgeRange]int{
	AgeRange18To24: 0,
	AgeRange25To34: 1,
	AgeRange35To44: 2,
	AgeRange45To54: 3,
	AgeRange55Plus: 4,
}

// MaxAgeRangeOrdinal is the highest ordinal position on the scale.
const MaxAgeRangeOrdinal = 4

// NewAgeRange validates and creates an AgeRange from its wire value
func NewAgeRange(value string) (AgeRange, error) {
	r := AgeRange(value)
	if _, ok := ageRangeOrdinals[r]; !ok {
		return "", fmt.Errorf("unknown age range %q", value)
	}
	return r, nil
}

// Ordinal returns the bucket's position 0..4 on the ordinal scale
func (r AgeRange) Ordinal() (int, bool) {
	pos, ok := ageRangeOrdinals[r]
	return pos, ok
}

// IsValid reports whether the bucket is one of the known five
func (r AgeRange) IsValid() bool {
	_, ok := ageRangeOrdinals[r]
	return ok
}

// String returns the wire representation
func (r AgeRange) String() string {
	return string(r)
}
