package answer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hsaban/saband/internal/domain"
)

// meterKeywords are the Hebrew square-meter spellings the fast path
// recognizes ("80 מטר", `80 מ"ר`).
var meterKeywords = []string{"מטר", `מ"ר`}

var digitsPattern = regexp.MustCompile(`\d+`)

// Calculator is the local fast path: it converts an area in square meters to
// a box count without calling the model.
type Calculator struct {
	// CoveragePerBox is how many m² one box covers.
	CoveragePerBox float64
	// ReserveBoxes is added on top of the ceiling division as cutting spare.
	ReserveBoxes int
}

// Resolve returns a calculator blueprint when the normalized query is an
// area-to-quantity request, or nil when the fast path does not apply.
func (c Calculator) Resolve(normalized string) *domain.Blueprint {
	if c.CoveragePerBox <= 0 {
		return nil
	}

	matched := false
	for _, kw := range meterKeywords {
		if strings.Contains(normalized, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	digits := digitsPattern.FindString(normalized)
	if digits == "" {
		return nil
	}
	meters, err := strconv.Atoi(digits)
	if err != nil || meters <= 0 {
		return nil
	}

	boxes := int(math.Ceil(float64(meters)/c.CoveragePerBox)) + c.ReserveBoxes

	return &domain.Blueprint{
		Text:   fmt.Sprintf(`עבור %d מ"ר תצטרך %d קרטונים (לפי %.2f מ"ר לקרטון).`, meters, boxes, c.CoveragePerBox),
		Source: "Saban Calculator",
		Type:   domain.BlueprintCalculator,
		Components: []domain.Component{{
			Type:  domain.ComponentCalcCard,
			Props: map[string]any{"meters": meters, "boxes": boxes},
		}},
	}
}
