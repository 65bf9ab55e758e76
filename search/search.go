// Package search ranks catalog products against free-text queries. All
// functions here are pure: no hidden state, no network calls.
package search

import (
	"sort"
	"strings"

	"github.com/verdantmart/storefront/catalog"
)

type categoryKeywords struct {
	name     string
	keywords []string
}

// categories is an ordered table: the first category whose keyword set has a
// substring match wins, so the order is part of the contract.
var categories = []categoryKeywords{
	{"shoes", []string{"shoe", "sneaker", "boot", "sandal", "heel", "loafer", "cleat", "pump", "espadrille", "footwear"}},
	{"clothing", []string{"shirt", "t-shirt", "tshirt", "tee", "jogger", "pant", "short", "cap", "hat", "drawstring", "crew neck", "chino"}},
	{"electronics", []string{"headphone", "laptop", "mouse", "toaster", "smartwatch", "phone case", "earbud", "computer", "tech"}},
	{"furniture", []string{"chair", "table", "sofa", "desk", "workstation", "dining", "armchair", "office chair"}},
	{"cars", []string{"tesla", "car", "vehicle", "automobile", "bike", "bicycle", "go-kart"}},
	{"accessories", []string{"bag", "handbag", "luggage", "sunglasses", "perfume", "fragrance", "tumbler", "glass"}},
	{"sports", []string{"sport", "athletic", "fitness", "gym", "workout"}},
}

// Categorize classifies a product from its title and description. When no
// keyword matches it falls back to the product's own declared category,
// lower-cased, or "miscellaneous".
func Categorize(product catalog.Product) string {
	content := strings.ToLower(product.Title) + " " + strings.ToLower(product.Description)
	for _, category := range categories {
		for _, keyword := range category.keywords {
			if strings.Contains(content, keyword) {
				return category.name
			}
		}
	}
	if product.Category != "" {
		return strings.ToLower(product.Category)
	}
	return "miscellaneous"
}

// Filter keeps every product whose title, description, derived category, or
// declared category contains the query as a substring. An empty or blank
// query returns products unchanged.
func Filter(products []catalog.Product, query string) []catalog.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}

	q := strings.ToLower(strings.TrimSpace(query))
	filtered := []catalog.Product{}
	for _, product := range products {
		title := strings.ToLower(product.Title)
		description := strings.ToLower(product.Description)
		derived := Categorize(product)
		declared := strings.ToLower(product.Category)

		if strings.Contains(title, q) ||
			strings.Contains(description, q) ||
			strings.Contains(derived, q) ||
			strings.Contains(declared, q) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// ByCategory keeps products whose derived or declared category equals the
// given one. Empty category or "all" returns products unchanged.
func ByCategory(products []catalog.Product, category string) []catalog.Product {
	if category == "" || category == "all" {
		return products
	}

	want := strings.ToLower(category)
	filtered := []catalog.Product{}
	for _, product := range products {
		if Categorize(product) == want || strings.ToLower(product.Category) == want {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// AvailableCategories lists the derived categories present in products,
// sorted alphabetically.
func AvailableCategories(products []catalog.Product) []string {
	seen := map[string]struct{}{}
	for _, product := range products {
		seen[Categorize(product)] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
