package domain

import (
	"encoding/json"
	"time"
)

// Source enumerates where a catalogue's content originated.
type Source string

const (
	SourcePrompt  Source = "ai_prompt"
	SourceOCR     Source = "ocr_import"
	SourceBuilder Source = "builder"
)

// Layout enumerates the rendering variants a category can use.
// LayoutNoImage suppresses image display for the category.
type Layout string

const (
	LayoutImageLeft Layout = "variant_1"
	LayoutImageTop  Layout = "variant_2"
	LayoutNoImage   Layout = "variant_3"
	LayoutImageGrid Layout = "variant_4"
)

// ValidLayout reports whether l is one of the known rendering variants.
func ValidLayout(l Layout) bool {
	switch l {
	case LayoutImageLeft, LayoutImageTop, LayoutNoImage, LayoutImageGrid:
		return true
	}
	return false
}

// Item is a single priced entry within a category. Image stays empty until
// enrichment resolves a URL for it.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// Category groups items under a unique name within a catalogue. Order is
// zero-based and strictly increasing across a catalogue's categories.
type Category struct {
	Name   string `json:"name"`
	Layout Layout `json:"layout"`
	Order  int    `json:"order"`
	Items  []Item `json:"items"`
}

// Meta carries the caller-supplied catalogue metadata that parameterizes
// prompt construction and the persisted record.
type Meta struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
	Currency string `json:"currency"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Catalogue is the persisted draft record, keyed by Slug. Services is empty
// exactly when Status is preparing or error.
type Catalogue struct {
	Slug      string          `json:"slug"`
	Status    Status          `json:"status"`
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle"`
	Currency  string          `json:"currency"`
	Theme     string          `json:"theme"`
	Language  string          `json:"language"`
	CreatedBy string          `json:"created_by"`
	Source    Source          `json:"source"`
	Services  []Category      `json:"services"`
	Logo      string          `json:"logo"`
	Legal     json.RawMessage `json:"legal"`
	Partners  json.RawMessage `json:"partners"`
	Config    json.RawMessage `json:"configuration"`
	Contact   json.RawMessage `json:"contact"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewDraft builds the initial preparing record for a generation run.
func NewDraft(slug string, meta Meta, source Source, userID string) *Catalogue {
	return &Catalogue{
		Slug:      slug,
		Status:    StatusPreparing,
		Title:     meta.Title,
		Subtitle:  meta.Subtitle,
		Currency:  meta.Currency,
		Theme:     meta.Theme,
		Language:  meta.Language,
		CreatedBy: userID,
		Source:    source,
		Legal:     json.RawMessage(`{}`),
		Partners:  json.RawMessage(`[]`),
		Config:    json.RawMessage(`{}`),
		Contact:   json.RawMessage(`[]`),
	}
}

// MustMarshal serializes v and panics on failure. Reserved for values the
// service itself constructed.
func MustMarshal(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
