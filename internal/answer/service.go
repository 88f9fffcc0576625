package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hsaban/saband/internal/domain"
	"github.com/hsaban/saband/internal/llm"
)

// ErrEmptyQuery is returned when the incoming message has no content after
// normalization.
var ErrEmptyQuery = errors.New("empty query")

// matchLimit caps how many inventory rows a catalog lookup may return.
const matchLimit = 3

// promptEntryLimit caps how many business-info rows get injected into the
// system prompt.
const promptEntryLimit = 20

// cacheRepository is the subset of store.CacheStore the service requires.
type cacheRepository interface {
	Get(ctx context.Context, key string) (*domain.CachedAnswer, error)
	Upsert(ctx context.Context, key, payload string, expiresAt *time.Time) error
}

// inventoryRepository is the subset of store.InventoryStore the service requires.
type inventoryRepository interface {
	Match(ctx context.Context, query string, limit int) ([]*domain.InventoryItem, error)
	ListMissingMedia(ctx context.Context, limit int) ([]*domain.InventoryItem, error)
	UpdateMedia(ctx context.Context, sku, imageURL, youtubeURL, description string) error
}

// businessRepository is the subset of store.BusinessStore the service requires.
type businessRepository interface {
	ListForPrompt(ctx context.Context, limit int) ([]*domain.BusinessInfo, error)
}

// historyRepository is the subset of store.HistoryStore the service requires.
type historyRepository interface {
	Append(ctx context.Context, query, response string) error
}

// generator is satisfied by *llm.Failover and by single llm.Client adapters.
type generator interface {
	Name() string
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// imageSearcher is the subset of search.Client the service requires.
type imageSearcher interface {
	Configured() bool
	ImageURL(ctx context.Context, query string) (string, error)
}

// Options carries the tunables the source used to hard-code per route.
type Options struct {
	DataVersion    string
	CacheTTL       time.Duration // <= 0 caches answers permanently
	CoveragePerBox float64
	ReserveBoxes   int
	EnrichBatch    int
}

// Service runs the answer-resolution pipeline: cache, calculator fast path,
// catalog lookup, then the model, whichever answers first.
type Service struct {
	cache     cacheRepository
	inventory inventoryRepository
	business  businessRepository
	history   historyRepository
	model     generator
	search    imageSearcher
	calc      Calculator
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	cache cacheRepository,
	inventory inventoryRepository,
	business businessRepository,
	history historyRepository,
	model generator,
	search imageSearcher,
	opts Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		cache:     cache,
		inventory: inventory,
		business:  business,
		history:   history,
		model:     model,
		search:    search,
		calc:      Calculator{CoveragePerBox: opts.CoveragePerBox, ReserveBoxes: opts.ReserveBoxes},
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve answers a single user query. Read failures (cache lookup, catalog
// match, model call) surface as errors; failures while persisting an already
// computed answer are logged and swallowed so the user still gets their
// response.
func (s *Service) Resolve(ctx context.Context, query string) (*domain.Blueprint, error) {
	return s.resolve(ctx, query, nil)
}

// ResolveChat answers the last turn of a transcript. Earlier turns are not
// part of the cache key or catalog lookup; they reach only the model stage,
// so it can resolve references like "and how much does that one cost?".
func (s *Service) ResolveChat(ctx context.Context, turns []llm.Turn) (*domain.Blueprint, error) {
	if len(turns) == 0 {
		return nil, ErrEmptyQuery
	}
	last := turns[len(turns)-1]
	return s.resolve(ctx, last.Content, turns[:len(turns)-1])
}

func (s *Service) resolve(ctx context.Context, query string, history []llm.Turn) (*domain.Blueprint, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return nil, ErrEmptyQuery
	}
	key := CacheKey(normalized, s.opts.DataVersion)

	// 1. Cache.
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	if cached.Fresh(s.now()) {
		bp := &domain.Blueprint{}
		if err := json.Unmarshal([]byte(cached.Payload), bp); err == nil {
			s.logger.Info("answer served from cache", "key", key)
			return bp, nil
		}
		// A corrupt payload from an earlier writer is treated as a miss and
		// overwritten below.
		s.logger.Warn("cached payload is not a valid blueprint, recomputing", "key", key)
	}

	// 2. Calculator fast path.
	if bp := s.calc.Resolve(normalized); bp != nil {
		s.finish(ctx, key, query, bp)
		return bp, nil
	}

	// 3. Catalog lookup.
	items, err := s.inventory.Match(ctx, normalized, matchLimit)
	if err != nil {
		return nil, fmt.Errorf("inventory match failed: %w", err)
	}
	if len(items) > 0 {
		bp := inventoryBlueprint(items)
		s.injectMissingImages(ctx, bp)
		s.finish(ctx, key, query, bp)
		return bp, nil
	}

	// 4. Model.
	entries, err := s.business.ListForPrompt(ctx, promptEntryLimit)
	if err != nil {
		// Prompt enrichment is optional; the model can answer without it.
		s.logger.Warn("failed to load business info for prompt", "error", err)
		entries = nil
	}

	// A single word may still hit the catalog even when the full phrase
	// missed; feed those rows to the model as context rather than answering
	// from them directly.
	var contextItems []*domain.InventoryItem
	if word := longestWord(normalized); len([]rune(word)) >= 3 {
		contextItems, err = s.inventory.Match(ctx, word, matchLimit)
		if err != nil {
			s.logger.Warn("context inventory match failed", "error", err)
			contextItems = nil
		}
	}

	text, err := s.model.Generate(ctx, llm.Request{
		System:  buildSystemPrompt(entries, contextItems),
		History: history,
		Prompt:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("model resolution failed: %w", err)
	}

	bp := llm.ParseBlueprint(text, s.model.Name())
	s.injectMissingImages(ctx, bp)
	s.finish(ctx, key, query, bp)
	return bp, nil
}

// finish persists the computed answer: cache upsert plus a chat-history row.
// Both are best-effort.
func (s *Service) finish(ctx context.Context, key, query string, bp *domain.Blueprint) {
	payload, err := json.Marshal(bp)
	if err != nil {
		s.logger.Error("failed to marshal blueprint", "error", err)
		return
	}

	var expiresAt *time.Time
	if s.opts.CacheTTL > 0 {
		t := s.now().Add(s.opts.CacheTTL)
		expiresAt = &t
	}
	if err := s.cache.Upsert(ctx, key, string(payload), expiresAt); err != nil {
		s.logger.Error("failed to cache answer", "key", key, "error", err)
	}

	if err := s.history.Append(ctx, query, string(payload)); err != nil {
		s.logger.Error("failed to append chat history", "error", err)
	}
}

// injectMissingImages fills productCard components that have no image with
// the top image-search hit. Search trouble never fails the answer.
func (s *Service) injectMissingImages(ctx context.Context, bp *domain.Blueprint) {
	if s.search == nil || !s.search.Configured() {
		return
	}

	for i, comp := range bp.Components {
		if comp.Type != domain.ComponentProductCard || comp.Props == nil {
			continue
		}
		if img, ok := comp.Props["image"].(string); ok && img != "" {
			continue
		}
		name, _ := comp.Props["name"].(string)
		if name == "" {
			continue
		}

		link, err := s.search.ImageURL(ctx, name)
		if err != nil {
			s.logger.Warn("image search failed", "product", name, "error", err)
			continue
		}
		if link == "" {
			continue
		}
		bp.Components[i].Props["image"] = link
		if bp.Media == nil {
			bp.Media = &domain.Media{Image: link}
		}
	}
}

// inventoryBlueprint builds the response payload for matched catalog rows.
// The first match is the primary card; specs and video cards are added when
// the row carries them.
func inventoryBlueprint(items []*domain.InventoryItem) *domain.Blueprint {
	primary := items[0]

	components := []domain.Component{{
		Type: domain.ComponentProductCard,
		Props: map[string]any{
			"sku":      primary.SKU,
			"name":     primary.ProductName,
			"price":    primary.Price,
			"category": primary.Category,
			"image":    primary.ImageURL,
		},
	}}

	if primary.CoveragePerSqm != "" || primary.DryingTime != "" || primary.ApplicationMethod != "" {
		components = append(components, domain.Component{
			Type: domain.ComponentSpecCard,
			Props: map[string]any{
				"coverage_per_sqm":   primary.CoveragePerSqm,
				"drying_time":        primary.DryingTime,
				"application_method": primary.ApplicationMethod,
			},
		})
	}
	if primary.YoutubeURL != "" {
		components = append(components, domain.Component{
			Type:  domain.ComponentVideoCard,
			Props: map[string]any{"video": primary.YoutubeURL},
		})
	}

	text := fmt.Sprintf("מצאתי במלאי: %s (מק\"ט %s) במחיר ₪%.2f.", primary.ProductName, primary.SKU, primary.Price)
	if len(items) > 1 {
		text += fmt.Sprintf(" נמצאו עוד %d מוצרים תואמים.", len(items)-1)
	}

	bp := &domain.Blueprint{
		Text:       text,
		Source:     "Saban Inventory",
		Type:       domain.BlueprintInventory,
		Components: components,
	}
	if primary.ImageURL != "" || primary.YoutubeURL != "" {
		bp.Media = &domain.Media{Image: primary.ImageURL, Video: primary.YoutubeURL}
	}
	return bp
}
