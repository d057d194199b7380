package georadius

import (
	"strings"

	"github.com/pkg/errors"
)

// Criterion is selection criterion chosen by operator. It is carried in result metadata only:
// features are always matched by intersection with circle
type Criterion uint16

const (
	// CriterionIntersects is "intersecta"
	CriterionIntersects = Criterion(iota + 1)
	// CriterionContains is "contem"
	CriterionContains
)

func (iotaIdx Criterion) String() string {
	switch iotaIdx {
	case CriterionIntersects:
		return "intersecta"
	case CriterionContains:
		return "contem"
	default:
		return "undefined"
	}
}

// ParseCriterion returns criterion for its name. Empty name means CriterionIntersects
func ParseCriterion(name string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "intersecta", "intersects":
		return CriterionIntersects, nil
	case "contem", "contains":
		return CriterionContains, nil
	default:
		return 0, errors.Errorf("unknown criterion '%s'", name)
	}
}
