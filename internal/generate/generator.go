// Package generate drives the structured-generation stages: segmenting raw
// input into category chunks, fanning out per-chunk completion calls, and
// reconciling a model-proposed ordering against the validated set.
package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/extract"
	"cataloger/internal/llm"
	"cataloger/internal/prompt"
)

type Generator struct {
	completer llm.Completer
	logger    zerolog.Logger
}

func NewGenerator(completer llm.Completer, logger zerolog.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

type segmentationPayload struct {
	Chunks []string `json:"chunks"`
}

// FromPrompt runs the single-shot path: one completion call produces the
// whole category array. Parse failure is terminal for the run.
func (g *Generator) FromPrompt(ctx context.Context, inputText string, meta domain.Meta, withImages bool) ([]domain.Category, error) {
	raw, err := g.completer.Complete(ctx, prompt.ForCatalogue(inputText, meta, withImages))
	if err != nil {
		return nil, fmt.Errorf("catalogue completion: %w", err)
	}
	categories, err := extract.Decode[[]domain.Category](raw, extract.ShapeArray)
	if err != nil {
		g.logger.Error().Err(err).Str("raw", snippet(raw)).Msg("generate: catalogue response unparseable")
		return nil, err
	}
	categories = finalize(categories, withImages)
	if len(categories) == 0 {
		return nil, domain.ErrNoCategoriesProduced
	}
	return categories, nil
}

// FromText runs the segmentation path: one completion call splits the input
// into per-category chunks, then every chunk is generated independently and
// concurrently. A chunk's failure drops that category only; the run fails
// when segmentation fails or no chunk survives validation.
func (g *Generator) FromText(ctx context.Context, inputText string, meta domain.Meta, withImages bool) ([]domain.Category, error) {
	chunks, err := g.segment(ctx, inputText)
	if err != nil {
		return nil, err
	}
	g.logger.Info().Int("chunks", len(chunks)).Msg("generate: segmentation complete")

	// Fan out one completion per chunk; results land at their chunk index so
	// completion order never affects reassembly.
	results := make([]*domain.Category, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(index int, chunk string) {
			defer wg.Done()
			results[index] = g.generateChunk(ctx, chunk, meta, index, withImages)
		}(i, chunk)
	}
	wg.Wait()

	var categories []domain.Category
	for _, c := range results {
		if c != nil {
			categories = append(categories, *c)
		}
	}
	categories = finalize(categories, withImages)
	if len(categories) == 0 {
		return nil, domain.ErrNoCategoriesProduced
	}
	g.logger.Info().Int("valid", len(categories)).Int("chunks", len(chunks)).Msg("generate: chunk processing complete")
	return categories, nil
}

func (g *Generator) segment(ctx context.Context, inputText string) ([]string, error) {
	raw, err := g.completer.Complete(ctx, prompt.ForSegmentation(inputText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSegmentationFailed, err)
	}
	payload, err := extract.Decode[segmentationPayload](raw, extract.ShapeObject)
	if err != nil {
		g.logger.Error().Err(err).Str("raw", snippet(raw)).Msg("generate: segmentation response unparseable")
		return nil, fmt.Errorf("%w: %v", domain.ErrSegmentationFailed, err)
	}
	var chunks []string
	for _, chunk := range payload.Chunks {
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: response contains no chunks", domain.ErrSegmentationFailed)
	}
	return chunks, nil
}

func (g *Generator) generateChunk(ctx context.Context, chunk string, meta domain.Meta, index int, withImages bool) *domain.Category {
	raw, err := g.completer.Complete(ctx, prompt.ForCategory(chunk, meta, index+1, withImages))
	if err != nil {
		g.logger.Warn().Err(err).Int("chunk", index).Msg("generate: chunk completion failed, dropping category")
		return nil
	}
	category, err := extract.Decode[domain.Category](raw, extract.ShapeObject)
	if err != nil {
		g.logger.Warn().Err(err).Int("chunk", index).Str("raw", snippet(raw)).Msg("generate: chunk response unparseable, dropping category")
		return nil
	}
	if strings.TrimSpace(category.Name) == "" || category.Items == nil {
		g.logger.Warn().Int("chunk", index).Str("raw", snippet(raw)).Msg("generate: chunk category missing name or items, dropping")
		return nil
	}
	return &category
}

// finalize enforces the invariants the model is instructed to honor but
// cannot be trusted with: unique category names (duplicates merged, first
// occurrence wins, items appended), unique item names within the catalogue,
// valid layouts, non-negative prices, and a consistent zero-based ascending
// order.
func finalize(categories []domain.Category, withImages bool) []domain.Category {
	byName := make(map[string]int)
	var merged []domain.Category
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		c.Name = name
		key := strings.ToLower(name)
		if at, ok := byName[key]; ok {
			merged[at].Items = append(merged[at].Items, c.Items...)
			continue
		}
		byName[key] = len(merged)
		merged = append(merged, c)
	}

	seenItems := make(map[string]struct{})
	for ci := range merged {
		if !domain.ValidLayout(merged[ci].Layout) {
			if withImages {
				merged[ci].Layout = domain.LayoutImageTop
			} else {
				merged[ci].Layout = domain.LayoutNoImage
			}
		}
		if !withImages {
			merged[ci].Layout = domain.LayoutNoImage
		}
		var items []domain.Item
		for _, item := range merged[ci].Items {
			item.Name = strings.TrimSpace(item.Name)
			if item.Name == "" {
				continue
			}
			key := strings.ToLower(item.Name)
			if _, ok := seenItems[key]; ok {
				continue
			}
			seenItems[key] = struct{}{}
			if item.Price < 0 {
				item.Price = 0
			}
			items = append(items, item)
		}
		merged[ci].Items = items
		merged[ci].Order = ci
	}
	return merged
}

func snippet(raw string) string {
	const max = 500
	if len(raw) <= max {
		return raw
	}
	return raw[:max] + "..."
}
