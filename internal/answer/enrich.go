package answer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hsaban/saband/internal/llm"
)

// enrichPrompt asks for media links for one product. The model must answer
// with bare JSON; fences are stripped before parsing either way.
const enrichPrompt = `Find a professional product image URL (.jpg/.png) and a YouTube embed URL for the construction product: %q.
Return ONLY JSON: {"img": "...", "yt": "...", "desc": "תיאור קצר בעברית"}`

const imagePrompt = `Search for a high-quality, professional product image URL for the following construction item:
Name: %q
SKU: %q
Return ONLY a valid JSON object with a single key "image_url", a direct link to a .jpg, .png or .webp file.`

type enrichResult struct {
	Img  string `json:"img"`
	Yt   string `json:"yt"`
	Desc string `json:"desc"`
}

// EnrichInventory backfills image, video and description for inventory rows
// that have no image yet, up to the configured batch size. It returns the
// names of updated products. A model failure for one product skips that
// product only.
func (s *Service) EnrichInventory(ctx context.Context) ([]string, error) {
	batch := s.opts.EnrichBatch
	if batch <= 0 {
		batch = 5
	}

	items, err := s.inventory.ListMissingMedia(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list products missing media: %w", err)
	}

	var updated []string
	for _, item := range items {
		text, err := s.model.Generate(ctx, llm.Request{Prompt: fmt.Sprintf(enrichPrompt, item.ProductName)})
		if err != nil {
			s.logger.Warn("enrichment model call failed", "sku", item.SKU, "error", err)
			continue
		}

		var result enrichResult
		if err := json.Unmarshal([]byte(llm.StripFences(text)), &result); err != nil {
			s.logger.Warn("enrichment response is not valid json", "sku", item.SKU, "error", err)
			continue
		}
		if result.Img == "" {
			s.logger.Warn("enrichment response carries no image", "sku", item.SKU)
			continue
		}

		if err := s.inventory.UpdateMedia(ctx, item.SKU, result.Img, result.Yt, result.Desc); err != nil {
			s.logger.Error("failed to store enriched media", "sku", item.SKU, "error", err)
			continue
		}
		updated = append(updated, item.ProductName)
	}

	return updated, nil
}

// ResolveImage finds a direct image URL for one product, asking the model
// first and falling back to image search when the model comes up empty.
func (s *Service) ResolveImage(ctx context.Context, productName, sku string) (string, error) {
	text, err := s.model.Generate(ctx, llm.Request{Prompt: fmt.Sprintf(imagePrompt, productName, sku)})
	if err == nil {
		var result struct {
			ImageURL string `json:"image_url"`
		}
		if jsonErr := json.Unmarshal([]byte(llm.StripFences(text)), &result); jsonErr == nil && result.ImageURL != "" {
			return result.ImageURL, nil
		}
		s.logger.Warn("image response is not a usable json payload", "sku", sku)
	} else {
		s.logger.Warn("image model call failed", "sku", sku, "error", err)
	}

	if s.search != nil && s.search.Configured() {
		link, searchErr := s.search.ImageURL(ctx, productName)
		if searchErr != nil {
			return "", fmt.Errorf("image search failed: %w", searchErr)
		}
		if link != "" {
			return link, nil
		}
	}
	return "", fmt.Errorf("no image found for %q", productName)
}
