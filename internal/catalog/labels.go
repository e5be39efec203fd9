package catalog

import "strings"

// UncategorizedLabel is shown for products without a slug.
const UncategorizedLabel = "Uncategorized"

// defaultLabels are the human labels warehouses and imports use for each slug.
var defaultLabels = map[CategorySlug][]string{
	SlugSmartphone:    {"Điện thoại", "Smartphone", "iPhone"},
	SlugTablet:        {"Máy tính bảng", "Tablet", "iPad"},
	SlugSmartwatch:    {"Đồng hồ thông minh", "Smartwatch", "Apple Watch"},
	SlugLaptop:        {"Laptop", "MacBook"},
	SlugHeadphone:     {"Tai nghe", "Headphone", "AirPods"},
	SlugTV:            {"TV", "Tivi"},
	SlugMonitor:       {"Màn hình", "Monitor"},
	SlugKeyboard:      {"Bàn phím", "Keyboard"},
	SlugMouse:         {"Chuột", "Mouse"},
	SlugSpeaker:       {"Loa", "Speaker"},
	SlugCamera:        {"Máy ảnh", "Camera"},
	SlugGamingConsole: {"Máy chơi game", "Gaming Console"},
	SlugAccessories:   {"Phụ kiện", "Accessories"},
}

// DefaultLabels returns a copy of the static labels for slug.
func DefaultLabels(slug CategorySlug) []string {
	labels := defaultLabels[slug]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// WarehouseCategoryLabels lists the default labels of slug followed by
// displayName, dropping entries whose normalized text was already seen.
// Blank input yields UncategorizedLabel so the result is never empty.
func WarehouseCategoryLabels(slug string, displayName string) []string {
	candidates := append(DefaultLabels(CategorySlug(strings.TrimSpace(slug))), displayName)

	seen := make(map[string]bool, len(candidates))
	labels := make([]string, 0, len(candidates))
	for _, label := range candidates {
		label = strings.TrimSpace(label)
		key := NormalizeText(label)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		labels = append(labels, label)
	}

	if len(labels) == 0 {
		if fallback := strings.TrimSpace(slug); fallback != "" {
			return append(labels, fallback)
		}
		return append(labels, UncategorizedLabel)
	}
	return labels
}
