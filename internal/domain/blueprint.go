package domain

// Blueprint is the structured payload the chat UI renders: free text plus
// optional card components. This is the single canonical response shape;
// whichever pipeline stage answers, the client always receives a Blueprint.
type Blueprint struct {
	Text       string      `json:"text"`
	Source     string      `json:"source"`
	Type       string      `json:"type"`
	Components []Component `json:"components"`
	Media      *Media      `json:"media,omitempty"`
}

// Blueprint types.
const (
	BlueprintLocal      = "local"
	BlueprintCalculator = "calculator"
	BlueprintInventory  = "inventory"
	BlueprintExtended   = "extended"
	BlueprintFallback   = "fallback"
)

// Component is one renderable card in a Blueprint.
type Component struct {
	Type  string         `json:"type"`
	Props map[string]any `json:"props"`
}

// Component types.
const (
	ComponentOrb         = "orb"
	ComponentProductCard = "productCard"
	ComponentSpecCard    = "specCard"
	ComponentVideoCard   = "videoCard"
	ComponentCalcCard    = "calcCard"
)

type Media struct {
	Image string `json:"image,omitempty"`
	Video string `json:"video,omitempty"`
}
