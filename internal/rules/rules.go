// Package rules holds the post-extraction enrichment tables: description
// fixes for known OCR damage and keyword-based category rules. Both are
// plain YAML so they can be maintained without touching code.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/textnorm"
)

// Category maps a set of merchant keywords to one category name.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules is the full enrichment rule set.
type Rules struct {
	DescriptionFixes map[string]string `yaml:"description_fixes"`
	Categories       []Category        `yaml:"categories"`
}

// Merchant names sometimes arrive with a store number glued on.
var drogasilStoreRe = regexp.MustCompile(`\b(DROGASIL)\d{2,4}\b`)

// Default returns the built-in rule set observed across the regression
// statements.
func Default() *Rules {
	return &Rules{
		DescriptionFixes: map[string]string{
			"LIVRARIA DA TRAVES":    "LIVRARIA DA TRAVESSA",
			"DROGASIL1255":          "DROGASIL",
			"KOPENHAGENSHOPPING CI": "KOPENHAGEN SHOPPING CI",
		},
		Categories: []Category{
			{Name: "Alimentação", Keywords: []string{"ifood", "ifd*", "rappi", "restaurante", "padaria", "mercado", "cafe"}},
			{Name: "Saúde", Keywords: []string{"drogasil", "drogaria", "farmacia", "raia"}},
			{Name: "Transporte", Keywords: []string{"uber", "99app", "posto", "estacionamento"}},
			{Name: "Assinaturas", Keywords: []string{"netflix", "spotify", "amazon prime", "apple.com"}},
		},
	}
}

// Load reads a rule set from a YAML file, merging it over the defaults so a
// partial file only overrides what it names.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	merged := Default()
	for from, to := range loaded.DescriptionFixes {
		merged.DescriptionFixes[from] = to
	}
	if len(loaded.Categories) > 0 {
		merged.Categories = loaded.Categories
	}
	return merged, nil
}

// FixDescription repairs known extraction damage in a merchant description.
func (r *Rules) FixDescription(desc string) string {
	if fixed, ok := r.DescriptionFixes[desc]; ok {
		desc = fixed
	}
	desc = drogasilStoreRe.ReplaceAllString(desc, "$1")
	return textnorm.CollapseSpaces(desc)
}

// Categorize returns the first category whose keyword appears in the
// description, comparing accent- and case-insensitively. Empty when nothing
// matches.
func (r *Rules) Categorize(desc string) string {
	folded := textnorm.Fold(desc)
	for _, cat := range r.Categories {
		for _, kw := range cat.Keywords {
			if kw != "" && strings.Contains(folded, textnorm.Fold(kw)) {
				return cat.Name
			}
		}
	}
	return ""
}

// Apply enriches the transactions in place: descriptions fixed first, then
// categorized.
func (r *Rules) Apply(items []models.Transaction) {
	for i := range items {
		items[i].Description = r.FixDescription(items[i].Description)
		items[i].Category = r.Categorize(items[i].Description)
	}
}
