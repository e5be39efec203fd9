package catalog

// CategorySlug is the canonical category identifier stored on products.
type CategorySlug string

const (
	SlugSmartphone    CategorySlug = "smartphone"
	SlugTablet        CategorySlug = "tablet"
	SlugSmartwatch    CategorySlug = "smartwatch"
	SlugLaptop        CategorySlug = "laptop"
	SlugHeadphone     CategorySlug = "headphone"
	SlugTV            CategorySlug = "tv"
	SlugMonitor       CategorySlug = "monitor"
	SlugKeyboard      CategorySlug = "keyboard"
	SlugMouse         CategorySlug = "mouse"
	SlugSpeaker       CategorySlug = "speaker"
	SlugCamera        CategorySlug = "camera"
	SlugGamingConsole CategorySlug = "gaming-console"
	SlugAccessories   CategorySlug = "accessories"
)

// slugOrder is the display order used for category filters.
var slugOrder = []CategorySlug{
	SlugSmartphone,
	SlugTablet,
	SlugSmartwatch,
	SlugLaptop,
	SlugHeadphone,
	SlugTV,
	SlugMonitor,
	SlugKeyboard,
	SlugMouse,
	SlugSpeaker,
	SlugCamera,
	SlugGamingConsole,
	SlugAccessories,
}

// SlugOrder returns a copy of the fixed category enumeration.
func SlugOrder() []CategorySlug {
	out := make([]CategorySlug, len(slugOrder))
	copy(out, slugOrder)
	return out
}

// IsKnown reports whether s belongs to the closed slug set.
func (s CategorySlug) IsKnown() bool {
	for _, known := range slugOrder {
		if known == s {
			return true
		}
	}
	return false
}

func (s CategorySlug) String() string { return string(s) }
