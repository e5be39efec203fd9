package catalog

import (
	"regexp"
	"strings"
)

// Source records which rule produced a classification.
type Source string

const (
	SourceAccessory Source = "accessory"
	SourceKeyword   Source = "keyword"
	SourceFallback  Source = "fallback"
	SourceNone      Source = "none"
)

// ClassificationInput carries the free-text product descriptors. Any field may be empty.
type ClassificationInput struct {
	Name        string
	Model       string
	BrandName   string
	CurrentSlug string // legacy or warehouse category label
}

// Result is a classification outcome. Slug is empty when Source is SourceNone.
type Result struct {
	Slug   CategorySlug
	Source Source
}

// accessorySignals win over every device keyword ("Apple Watch Band" is an accessory).
// "magsafe" stays a warehouse label only, MacBook names carry it as a port.
var accessorySignals = []string{
	"accessory", "accessories", "charger", "cable", "case", "screen protector", "adapter",
	"power bank", "dock", "strap", "band", "stand", "cover", "apple pencil", "airtag",
	"smarttag", "smart tag",
	"phụ kiện", "ốp lưng", "cáp sạc", "củ sạc", "sạc dự phòng", "miếng dán", "dây đeo",
}

// wearableDevices name devices whose product name contains an accessory
// signal. They are blanked out before the accessory check.
var wearableDevices = []string{"mi band", "smart band"}

type categoryRule struct {
	slug      CategorySlug
	compact   []string // brand-exclusive substrings checked on the compact text
	wordRules []*regexp.Regexp
}

// keywordPrecedence is the fixed test order after the accessory check.
var keywordPrecedence = []struct {
	slug    CategorySlug
	compact []string
}{
	{SlugSmartwatch, []string{"applewatch"}},
	{SlugTablet, []string{"ipad"}},
	{SlugSmartphone, []string{"iphone", "galaxys", "galaxyz", "galaxya", "galaxym", "galaxynote"}},
	{SlugLaptop, []string{"macbook"}},
	{SlugHeadphone, []string{"airpods"}},
	{SlugTV, nil},
	{SlugMonitor, nil},
	{SlugKeyboard, nil},
	{SlugMouse, nil},
	{SlugSpeaker, nil},
	{SlugCamera, nil},
	{SlugGamingConsole, nil},
}

var (
	accessoryPatterns = CompileWordPatterns(accessorySignals)
	wearablePatterns  = CompileWordPatterns(wearableDevices)
	categoryRules     = buildCategoryRules()
)

func buildCategoryRules() []categoryRule {
	rules := make([]categoryRule, 0, len(keywordPrecedence))
	for _, p := range keywordPrecedence {
		words := append([]string{string(p.slug)}, synonyms[p.slug]...)
		rules = append(rules, categoryRule{
			slug:      p.slug,
			compact:   p.compact,
			wordRules: CompileWordPatterns(words),
		})
	}
	return rules
}

// CompileWordPatterns turns phrases into word-boundary patterns. Phrases are
// normalized first, internal whitespace matches any run of spaces.
func CompileWordPatterns(phrases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	seen := make(map[string]bool, len(phrases))
	for _, phrase := range phrases {
		normalized := NormalizeText(phrase)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		parts := strings.Fields(normalized)
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+strings.Join(parts, `\s+`)+`\b`))
	}
	return patterns
}

// ContainsAnyWord reports whether any pattern matches text.
func ContainsAnyWord(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func stripWords(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, " ")
	}
	return text
}

// NormalizeWarehouseCategory maps a legacy/warehouse category label onto a slug,
// trying the normalized form first and then the compact form.
func NormalizeWarehouseCategory(category string) (CategorySlug, bool) {
	normalized := NormalizeText(category)
	if normalized == "" {
		return "", false
	}
	if slug, ok := LookupAlias(normalized); ok {
		return slug, true
	}
	return LookupAlias(strings.ReplaceAll(normalized, " ", ""))
}

// Classify resolves the category of a product from its descriptors.
func Classify(in ClassificationInput) Result {
	raw := in.Name + " " + in.Model + " " + in.BrandName
	text := NormalizeText(raw)
	if text == "" {
		return fallback(in.CurrentSlug)
	}

	if ContainsAnyWord(stripWords(text, wearablePatterns), accessoryPatterns) {
		return Result{Slug: SlugAccessories, Source: SourceAccessory}
	}

	compact := strings.ReplaceAll(text, " ", "")
	for _, rule := range categoryRules {
		if rule.matches(text, compact) {
			return Result{Slug: rule.slug, Source: SourceKeyword}
		}
	}

	return fallback(in.CurrentSlug)
}

// ClassifyProductTypeSlug returns the slug for in, ok is false when the product
// stays uncategorized.
func ClassifyProductTypeSlug(in ClassificationInput) (CategorySlug, bool) {
	res := Classify(in)
	return res.Slug, res.Source != SourceNone
}

func (r categoryRule) matches(text, compact string) bool {
	for _, sub := range r.compact {
		if strings.Contains(compact, sub) {
			return true
		}
	}
	return ContainsAnyWord(text, r.wordRules)
}

func fallback(currentSlug string) Result {
	if slug, ok := NormalizeWarehouseCategory(currentSlug); ok {
		return Result{Slug: slug, Source: SourceFallback}
	}
	return Result{Source: SourceNone}
}
