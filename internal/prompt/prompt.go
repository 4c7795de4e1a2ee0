// Package prompt builds the instruction strings for each generation stage.
// Builders are pure: identical inputs produce identical prompts, which keeps
// prompt construction testable as plain string logic. The formatting
// constraints embedded here (JSON-only output, no special punctuation,
// ascending order numbering, unique names) are a contract the extract
// package depends on.
package prompt

import (
	"fmt"
	"strings"

	"cataloger/internal/domain"
)

const categorySchema = `{"name":"Name of category (e.g. Lunch, Breakfast, Wellness, Mobile Phones)","layout":"variant_1 | variant_2 | variant_3 | variant_4","order":1,"items":[{"name":"Item Name","description":"Description of Item","price":12,"image":"image url"}]}`

const layoutGuide = `{"variant_1":"image beside item text","variant_2":"large image above item text","variant_3":"no image, text only","variant_4":"image grid"}`

func layoutInstruction(withImages bool) string {
	if withImages {
		return fmt.Sprintf("Layout keys and the purpose of each variant: %s. Pick the variant that suits the category; for drinks, for example, use the variant without an image.", layoutGuide)
	}
	return fmt.Sprintf("For category layout always use value %q.", domain.LayoutNoImage)
}

func metaLine(meta domain.Meta) string {
	return fmt.Sprintf("General information about the catalogue: name=%q, title=%q, subtitle=%q, language=%q, currency=%q, theme=%q.",
		meta.Name, meta.Title, meta.Subtitle, meta.Language, meta.Currency, meta.Theme)
}

// ForCatalogue builds the single-shot prompt that turns a free-text request
// into a full array of categories.
func ForCatalogue(inputText string, meta domain.Meta, withImages bool) string {
	sb := &strings.Builder{}
	sb.WriteString("Role: You are an expert in creating price lists and catalogues (restaurant menus, beauty service offers, product price lists).\n")
	sb.WriteString("Based on the following prompt, generate a complete catalogue configuration in JSON format.\n\n")
	fmt.Fprintf(sb, "Prompt: %s\n\n", inputText)
	fmt.Fprintf(sb, "Schema for each category: %s. Respond with a JSON ARRAY of such categories and nothing else.\n\n", categorySchema)
	sb.WriteString(layoutInstruction(withImages))
	sb.WriteString("\n\n")
	sb.WriteString(metaLine(meta))
	sb.WriteString("\n\nREQUIREMENTS:\n")
	sb.WriteString("1. Return ONLY the JSON array, no additional text, explanations, or formatting.\n")
	sb.WriteString("2. Start your response directly with [ and end with ].\n")
	fmt.Fprintf(sb, "3. Write the catalogue in the selected language: %s.\n", meta.Language)
	sb.WriteString("4. Add at least 3 categories with at least 5 items each.\n")
	sb.WriteString("5. Use full item names, e.g. \"Spaghetti Carbonara\", \"Caesar Salad\".\n")
	sb.WriteString("6. Set order for each category starting from 1, ascending, in a logical browsing sequence.\n")
	sb.WriteString("7. Category names must be unique. Item names must be unique within the catalogue.\n")
	sb.WriteString("8. Strings must not contain special characters such as /, -, \", or '.\n")
	sb.WriteString("9. Ensure the JSON is valid and well formed.\n")
	return sb.String()
}

// ForSegmentation builds the prompt that splits raw OCR text into logical
// per-category chunks, returned as {"chunks": ["...", ...]}.
func ForSegmentation(ocrText string) string {
	sb := &strings.Builder{}
	sb.WriteString("Role: You are an expert in analyzing digital catalogues, menus and price lists to identify categories.\n")
	sb.WriteString("Analyze the provided OCR text and split it into logical category chunks.\n\n")
	fmt.Fprintf(sb, "OCR Text: %s\n\n", ocrText)
	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString(`1. Return ONLY a JSON object with this structure: {"chunks": ["chunk1", "chunk2"]}.` + "\n")
	sb.WriteString("2. Each chunk must contain all text belonging to one category: the category name, its items, and any descriptions or prices.\n")
	sb.WriteString("3. Category names must be unique within the catalogue. Merge categories that share a name when it makes sense.\n")
	sb.WriteString("4. If no clear categories are found, group similar items together logically.\n")
	sb.WriteString("5. Do not modify the original text content, only split it.\n")
	sb.WriteString("6. Remove text unrelated to services or products (addresses, legal info, links).\n")
	sb.WriteString("7. Start your response directly with { and end with }.\n\n")
	sb.WriteString("Example output:\n")
	sb.WriteString(`{"chunks": ["BREAKFAST\nScrambled Eggs 8.50\nPancakes 12.00", "DRINKS\nCoffee 3.50\nOrange Juice 4.00"]}`)
	return sb.String()
}

// ForCategory builds the per-chunk prompt requesting a single structured
// category object. The order index is one-based at generation time; the
// orderer reassigns zero-based positions afterwards.
func ForCategory(chunk string, meta domain.Meta, order int, withImages bool) string {
	sb := &strings.Builder{}
	sb.WriteString("Role: You are an expert in creating service category configurations.\n")
	sb.WriteString("Based on the provided category text chunk, generate a single category object in JSON format.\n\n")
	fmt.Fprintf(sb, "Category Text Chunk: %s\n\n", chunk)
	fmt.Fprintf(sb, "Schema for the category: %s\n\n", categorySchema)
	sb.WriteString(layoutInstruction(withImages))
	sb.WriteString("\n\n")
	sb.WriteString(metaLine(meta))
	sb.WriteString("\n\nREQUIREMENTS:\n")
	sb.WriteString("1. Return ONLY the JSON object for ONE category, no additional text or formatting.\n")
	sb.WriteString("2. Start your response directly with { and end with }.\n")
	sb.WriteString("3. Extract the category name from the text chunk and correct garbled words so names read naturally.\n")
	sb.WriteString("4. Item names must be unique; when the chunk repeats an item, keep only one.\n")
	fmt.Fprintf(sb, "5. Set order to %d.\n", order)
	fmt.Fprintf(sb, "6. If prices are missing, estimate reasonable prices in currency %q.\n", meta.Currency)
	sb.WriteString("7. Write the category in the language and alphabet of the chunk text.\n")
	sb.WriteString("8. Strings must be properly escaped and free of special characters such as /, -, \", or '.\n")
	sb.WriteString("9. Set the image field to an empty string for every item.\n")
	return sb.String()
}

// ForOrdering builds the reorder prompt. The response must be a JSON array
// of category names with exactly the input length.
func ForOrdering(categories []domain.Category, meta domain.Meta) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	title := meta.Title
	if title == "" {
		title = "catalogue"
	}
	language := meta.Language
	if language == "" {
		language = "English"
	}
	sb := &strings.Builder{}
	sb.WriteString("You are an expert in organizing service and menu categories to optimize the customer browsing experience.\n\n")
	fmt.Fprintf(sb, "Task: reorder the categories below into a logical, intuitive flow for customers browsing a %s.\n\n", title)
	fmt.Fprintf(sb, "Input categories: %s\n\n", string(domain.MustMarshal(names)))
	sb.WriteString("Ordering guidelines:\n")
	sb.WriteString("1. Logical progression: appetizers before mains before desserts, morning before evening.\n")
	sb.WriteString("2. Follow how customers typically browse and choose.\n")
	sb.WriteString("3. Place beverages, desserts and add-ons at the end.\n\n")
	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString("1. Return a valid JSON array containing only category names (strings).\n")
	fmt.Fprintf(sb, "2. Match the input array length (%d categories).\n", len(names))
	sb.WriteString("3. Preserve the exact spelling of the input category names.\n")
	fmt.Fprintf(sb, "4. Category names stay in %s with consistent capitalization and no special characters.\n\n", language)
	sb.WriteString(`Output format example: ["Breakfast", "Lunch", "Dinner", "Desserts", "Beverages"]`)
	return sb.String()
}

// ForImageSearch builds the prompt asking the model to propose one direct
// image URL for an item.
func ForImageSearch(itemName string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Find one direct, publicly accessible image URL that best represents %q.\n", itemName)
	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString(`1. Return ONLY a JSON object of the form {"url": "https://..."}.` + "\n")
	sb.WriteString("2. The URL must point straight at an image file (jpg, jpeg, png, webp or gif), not at a web page.\n")
	sb.WriteString("3. Start your response directly with { and end with }.\n")
	return sb.String()
}
