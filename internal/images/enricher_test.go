package images

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeSearcher struct {
	url   string
	err   error
	calls int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (string, error) {
	f.calls++
	return f.url, f.err
}

func TestResolvePrefersModelJSON(t *testing.T) {
	completer := &fakeCompleter{response: `{"image_url": "https://cdn.example.com/pasta.jpg"}`}
	searcher := &fakeSearcher{url: "https://stock.example.com/x.jpg"}
	e := NewEnricher(completer, searcher, "", zerolog.Nop())

	got := e.Resolve(context.Background(), "Spaghetti Carbonara")
	if got != "https://cdn.example.com/pasta.jpg" {
		t.Fatalf("Resolve = %q", got)
	}
	if searcher.calls != 0 {
		t.Fatal("stock search must not run when the model answers")
	}
}

func TestResolveFallsBackToRegexScan(t *testing.T) {
	completer := &fakeCompleter{response: "I suggest this photo: https://img.example.com/salad.PNG?w=400 hope it helps"}
	e := NewEnricher(completer, &fakeSearcher{}, "", zerolog.Nop())

	got := e.Resolve(context.Background(), "Caesar Salad")
	if got != "https://img.example.com/salad.PNG?w=400" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveFallsBackToSearch(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("timeout")}
	searcher := &fakeSearcher{url: "https://stock.example.com/soup.jpg"}
	e := NewEnricher(completer, searcher, "", zerolog.Nop())

	got := e.Resolve(context.Background(), "Tomato Soup")
	if got != "https://stock.example.com/soup.jpg" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolvePlaceholderWhenEverythingFails(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("boom")}
	searcher := &fakeSearcher{err: errors.New("503")}
	e := NewEnricher(completer, searcher, "https://static.example.com/placeholder.png", zerolog.Nop())

	got := e.Resolve(context.Background(), "Mystery Dish")
	if got != "https://static.example.com/placeholder.png" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestEnrichCategoriesSkipsNoImageLayout(t *testing.T) {
	completer := &fakeCompleter{response: `{"url": "https://cdn.example.com/a.jpg"}`}
	e := NewEnricher(completer, nil, "", zerolog.Nop())

	categories := []domain.Category{
		{
			Name:   "Drinks",
			Layout: domain.LayoutNoImage,
			Items:  []domain.Item{{Name: "Coffee"}},
		},
		{
			Name:   "Mains",
			Layout: domain.LayoutImageTop,
			Items:  []domain.Item{{Name: "Steak"}, {Name: "Fish"}},
		},
	}
	out := e.EnrichCategories(context.Background(), categories)

	if out[0].Items[0].Image != "" {
		t.Fatal("no-image category must stay unmodified")
	}
	for _, item := range out[1].Items {
		if item.Image != "https://cdn.example.com/a.jpg" {
			t.Fatalf("item %q image = %q", item.Name, item.Image)
		}
	}
	if completer.calls != 2 {
		t.Fatalf("completer calls = %d, want 2 (one per image-layout item)", completer.calls)
	}
}

func TestResolveRejectsNonHTTPURLValues(t *testing.T) {
	completer := &fakeCompleter{response: `{"url": "ftp://files.example.com/a.jpg"}`}
	searcher := &fakeSearcher{url: ""}
	e := NewEnricher(completer, searcher, "https://p.example.com/p.png", zerolog.Nop())

	if got := e.Resolve(context.Background(), "Item"); got != "https://p.example.com/p.png" {
		t.Fatalf("Resolve = %q, want placeholder", got)
	}
}
