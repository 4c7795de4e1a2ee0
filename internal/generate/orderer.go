package generate

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/extract"
	"cataloger/internal/llm"
	"cataloger/internal/prompt"
)

// Orderer asks the model for a customer-journey-optimized category order and
// reconciles the answer against the original set. Ordering is an
// enhancement: every failure mode falls back to the input untouched.
type Orderer struct {
	completer llm.Completer
	logger    zerolog.Logger
}

func NewOrderer(completer llm.Completer, logger zerolog.Logger) *Orderer {
	return &Orderer{completer: completer, logger: logger}
}

// Order returns the categories re-indexed by the model's proposed sequence.
// Returned names that match no original category are dropped; original
// categories the model omitted are appended at the end so the catalogue
// never loses content to an inexact name list.
func (o *Orderer) Order(ctx context.Context, categories []domain.Category, meta domain.Meta) []domain.Category {
	if len(categories) < 2 {
		return categories
	}
	raw, err := o.completer.Complete(ctx, prompt.ForOrdering(categories, meta))
	if err != nil {
		o.logger.Warn().Err(err).Msg("order: completion failed, keeping original order")
		return categories
	}
	names, err := extract.StringArray(raw)
	if err != nil {
		o.logger.Warn().Err(err).Str("raw", snippet(raw)).Msg("order: response unparseable, keeping original order")
		return categories
	}
	if len(names) != len(categories) {
		o.logger.Warn().
			Int("expected", len(categories)).
			Int("received", len(names)).
			Msg("order: length mismatch, keeping original order")
		return categories
	}

	byName := make(map[string]int, len(categories))
	for i, c := range categories {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = i
	}

	matched := make([]bool, len(categories))
	var ordered []domain.Category
	for _, name := range names {
		at, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok || matched[at] {
			o.logger.Warn().Str("name", name).Msg("order: proposed name matches no category, dropping")
			continue
		}
		matched[at] = true
		c := categories[at]
		c.Order = len(ordered)
		ordered = append(ordered, c)
	}
	// Categories the model forgot keep their content and close out the list.
	for i, c := range categories {
		if matched[i] {
			continue
		}
		c.Order = len(ordered)
		ordered = append(ordered, c)
	}
	return ordered
}
