// Package images resolves representative image URLs for catalogue items
// through a fallback chain: a model-proposed URL, then a stock photo search,
// then a fixed placeholder. Enrichment never fails a pipeline run; the worst
// case is a visible placeholder.
package images

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/extract"
	"cataloger/internal/llm"
	"cataloger/internal/prompt"
)

// DefaultPlaceholderURL is used when no placeholder is configured.
const DefaultPlaceholderURL = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400"

// urlKeyAliases are the object keys the model has been observed to use when
// asked for {"url": ...}.
var urlKeyAliases = []string{"url", "image", "image_url", "imageUrl", "link"}

var imageURLPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>\\]+\.(?:jpe?g|png|webp|gif)(?:\?[^\s"'<>\\]*)?`)

type Enricher struct {
	completer   llm.Completer
	searcher    Searcher
	placeholder string
	logger      zerolog.Logger
}

func NewEnricher(completer llm.Completer, searcher Searcher, placeholder string, logger zerolog.Logger) *Enricher {
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	return &Enricher{
		completer:   completer,
		searcher:    searcher,
		placeholder: placeholder,
		logger:      logger,
	}
}

// EnrichCategories fills item image URLs in place. Categories using the
// no-image layout are returned untouched without any remote call. Items of
// one category resolve concurrently; each item's failure is isolated.
func (e *Enricher) EnrichCategories(ctx context.Context, categories []domain.Category) []domain.Category {
	for ci := range categories {
		if categories[ci].Layout == domain.LayoutNoImage {
			continue
		}
		e.enrichItems(ctx, categories[ci].Items)
	}
	return categories
}

func (e *Enricher) enrichItems(ctx context.Context, items []domain.Item) {
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(item *domain.Item) {
			defer wg.Done()
			item.Image = e.Resolve(ctx, item.Name)
		}(&items[i])
	}
	wg.Wait()
}

// Resolve runs the fallback chain for one item name and always returns a
// usable URL.
func (e *Enricher) Resolve(ctx context.Context, name string) string {
	if url := e.fromModel(ctx, name); url != "" {
		return url
	}
	if url := e.fromSearch(ctx, name); url != "" {
		return url
	}
	e.logger.Debug().Str("item", name).Msg("images: falling back to placeholder")
	return e.placeholder
}

func (e *Enricher) fromModel(ctx context.Context, name string) string {
	if e.completer == nil {
		return ""
	}
	raw, err := e.completer.Complete(ctx, prompt.ForImageSearch(name))
	if err != nil {
		e.logger.Warn().Err(err).Str("item", name).Msg("images: model lookup failed")
		return ""
	}
	if url := urlFromObject(raw); url != "" {
		return url
	}
	// The model did not produce clean JSON; scan the raw text for the first
	// direct image URL instead.
	if url := imageURLPattern.FindString(raw); url != "" {
		return url
	}
	e.logger.Debug().Str("item", name).Msg("images: model response held no usable url")
	return ""
}

func (e *Enricher) fromSearch(ctx context.Context, name string) string {
	if e.searcher == nil {
		return ""
	}
	url, err := e.searcher.Search(ctx, name)
	if err != nil {
		e.logger.Warn().Err(err).Str("item", name).Msg("images: stock search failed")
		return ""
	}
	return url
}

func urlFromObject(raw string) string {
	obj, err := extract.Decode[map[string]json.RawMessage](raw, extract.ShapeObject)
	if err != nil {
		return ""
	}
	for _, key := range urlKeyAliases {
		rawValue, ok := obj[key]
		if !ok {
			continue
		}
		var value string
		if json.Unmarshal(rawValue, &value) != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			return value
		}
	}
	return ""
}
