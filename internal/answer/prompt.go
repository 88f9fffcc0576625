package answer

import (
	"fmt"
	"strings"

	"github.com/hsaban/saband/internal/domain"
)

// systemPromptBase instructs the model to answer as the business's expert and
// to emit blueprint JSON only.
const systemPromptBase = `אתה המומחה הטכני של "ח. סבן חומרי בניין". ענה בעברית בלבד.
החזר תשובה בפורמט JSON בלבד, התואם לסכימת UIBlueprint:
{"text": string, "source": string, "type": "local"|"calculator"|"inventory"|"extended"|"fallback", "components": [{"type": "orb"|"productCard"|"specCard"|"videoCard"|"calcCard", "props": {...}}], "media": {"image": string, "video": string}}
אם חסר מידע טכני או מדיה, השתמש בחיפוש כדי להשלים אותו.`

// buildSystemPrompt appends curated business knowledge and any matched
// inventory rows to the base instruction so answers stay grounded in the
// catalog instead of invented.
func buildSystemPrompt(entries []*domain.BusinessInfo, items []*domain.InventoryItem) string {
	var b strings.Builder
	b.WriteString(systemPromptBase)

	if len(entries) > 0 {
		b.WriteString("\n\nמידע עסקי מאומת:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", e.Category, e.Question, e.Answer)
		}
	}

	if len(items) > 0 {
		b.WriteString("\nמוצרים רלוונטיים מהמלאי:\n")
		for _, item := range items {
			fmt.Fprintf(&b, "- %s (מק\"ט: %s, מחיר: ₪%.2f, צריכה: %s)\n",
				item.ProductName, item.SKU, item.Price, orDefault(item.CoveragePerSqm, "לפי דרישה"))
		}
	}

	return b.String()
}

// longestWord picks the most specific token of a query for the context
// lookup. Short tokens match half the catalog and are skipped by the caller.
func longestWord(normalized string) string {
	longest := ""
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) > len([]rune(longest)) {
			longest = w
		}
	}
	return longest
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
