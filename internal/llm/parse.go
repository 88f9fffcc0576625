package llm

import (
	"encoding/json"
	"strings"

	"github.com/hsaban/saband/internal/domain"
)

// StripFences removes markdown code-fence markers a model may wrap around a
// JSON answer. Fenced and unfenced payloads must parse identically.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseBlueprint parses model output into a Blueprint. Output that is not
// valid blueprint JSON is never an error: the raw text is wrapped in a
// fallback blueprint attributed to source.
func ParseBlueprint(raw, source string) *domain.Blueprint {
	clean := StripFences(raw)

	var bp domain.Blueprint
	if err := json.Unmarshal([]byte(clean), &bp); err == nil && (bp.Text != "" || len(bp.Components) > 0) {
		if bp.Source == "" {
			bp.Source = source
		}
		if bp.Type == "" {
			bp.Type = domain.BlueprintExtended
		}
		if bp.Components == nil {
			bp.Components = []domain.Component{}
		}
		return &bp
	}

	return &domain.Blueprint{
		Text:       strings.TrimSpace(raw),
		Source:     source,
		Type:       domain.BlueprintFallback,
		Components: []domain.Component{},
	}
}
