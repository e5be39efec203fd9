package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyProductTypeSlug(t *testing.T) {
	tests := []struct {
		name   string
		in     ClassificationInput
		want   CategorySlug
		wantOK bool
	}{
		{
			name:   "accessory signal beats smartwatch keyword",
			in:     ClassificationInput{Name: "Apple Watch Band"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "iphone is a smartphone",
			in:     ClassificationInput{Name: "iPhone 15 Pro Max", BrandName: "Apple"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "empty text falls back to legacy slug",
			in:     ClassificationInput{CurrentSlug: "Tablet"},
			want:   SlugTablet,
			wantOK: true,
		},
		{
			name:   "unmatched without legacy is uncategorized",
			in:     ClassificationInput{Name: "Xyz Unknown Gadget 123"},
			wantOK: false,
		},
		{
			name:   "unmatched uses legacy label",
			in:     ClassificationInput{Name: "Xyz Unknown Gadget 123", CurrentSlug: "Phụ kiện"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "ipad keyboard case is an accessory",
			in:     ClassificationInput{Name: "iPad Pro Keyboard Case"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "apple watch compact match without space",
			in:     ClassificationInput{Name: "AppleWatch Series 9 GPS"},
			want:   SlugSmartwatch,
			wantOK: true,
		},
		{
			name:   "smartwatch precedes smartphone",
			in:     ClassificationInput{Name: "Apple Watch Ultra 2", Model: "for iPhone"},
			want:   SlugSmartwatch,
			wantOK: true,
		},
		{
			name:   "ipad model field",
			in:     ClassificationInput{Name: "Air 11 inch", Model: "iPad Air M2"},
			want:   SlugTablet,
			wantOK: true,
		},
		{
			name:   "vietnamese laptop phrase",
			in:     ClassificationInput{Name: "Máy tính xách tay văn phòng"},
			want:   SlugLaptop,
			wantOK: true,
		},
		{
			name:   "macbook",
			in:     ClassificationInput{Name: "MacBook Air 13 M3"},
			want:   SlugLaptop,
			wantOK: true,
		},
		{
			name:   "airpods",
			in:     ClassificationInput{Name: "AirPods Pro 2"},
			want:   SlugHeadphone,
			wantOK: true,
		},
		{
			name:   "vietnamese headphone",
			in:     ClassificationInput{Name: "Tai nghe không dây"},
			want:   SlugHeadphone,
			wantOK: true,
		},
		{
			name:   "android brand",
			in:     ClassificationInput{Name: "Redmi Note 13", BrandName: "Xiaomi"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "galaxy s phone",
			in:     ClassificationInput{Name: "Samsung Galaxy S24 Ultra"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "galaxy foldable",
			in:     ClassificationInput{Name: "Samsung Galaxy Z Fold5"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "galaxy a phone",
			in:     ClassificationInput{Name: "Galaxy A55 5G", BrandName: "Samsung"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "galaxy tab stays a tablet",
			in:     ClassificationInput{Name: "Samsung Galaxy Tab S9"},
			want:   SlugTablet,
			wantOK: true,
		},
		{
			name:   "galaxy watch stays a smartwatch",
			in:     ClassificationInput{Name: "Samsung Galaxy Watch 6 Classic"},
			want:   SlugSmartwatch,
			wantOK: true,
		},
		{
			name:   "galaxy buds are headphones",
			in:     ClassificationInput{Name: "Samsung Galaxy Buds FE"},
			want:   SlugHeadphone,
			wantOK: true,
		},
		{
			name:   "galaxy smarttag is an accessory",
			in:     ClassificationInput{Name: "Galaxy SmartTag 2"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "redmi watch beats redmi phone brand",
			in:     ClassificationInput{Name: "Xiaomi Redmi Watch 4"},
			want:   SlugSmartwatch,
			wantOK: true,
		},
		{
			name:   "mi band is a wearable not a strap",
			in:     ClassificationInput{Name: "Xiaomi Mi Band 8"},
			want:   SlugSmartwatch,
			wantOK: true,
		},
		{
			name:   "mi band strap is an accessory",
			in:     ClassificationInput{Name: "Mi Band 8 Strap"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "apple pencil",
			in:     ClassificationInput{Name: "Apple Pencil Pro"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "airtag pack",
			in:     ClassificationInput{Name: "AirTag 4 pack"},
			want:   SlugAccessories,
			wantOK: true,
		},
		{
			name:   "macbook with magsafe port stays a laptop",
			in:     ClassificationInput{Name: "MacBook Pro 14 MagSafe 3"},
			want:   SlugLaptop,
			wantOK: true,
		},
		{
			name:   "tv",
			in:     ClassificationInput{Name: "Apple TV 4K"},
			want:   SlugTV,
			wantOK: true,
		},
		{
			name:   "monitor",
			in:     ClassificationInput{Name: "Studio Display"},
			want:   SlugMonitor,
			wantOK: true,
		},
		{
			name:   "keyboard",
			in:     ClassificationInput{Name: "Magic Keyboard with Touch ID"},
			want:   SlugKeyboard,
			wantOK: true,
		},
		{
			name:   "mouse",
			in:     ClassificationInput{Name: "Chuột Magic Mouse"},
			want:   SlugMouse,
			wantOK: true,
		},
		{
			name:   "speaker",
			in:     ClassificationInput{Name: "HomePod mini"},
			want:   SlugSpeaker,
			wantOK: true,
		},
		{
			name:   "camera",
			in:     ClassificationInput{Name: "GoPro Hero 12"},
			want:   SlugCamera,
			wantOK: true,
		},
		{
			name:   "gaming console",
			in:     ClassificationInput{Name: "Sony PlayStation 5 Slim"},
			want:   SlugGamingConsole,
			wantOK: true,
		},
		{
			name:   "word boundary keeps standard out of stand",
			in:     ClassificationInput{Name: "Standard Edition Speaker"},
			want:   SlugSpeaker,
			wantOK: true,
		},
		{
			name:   "headphone is not a phone",
			in:     ClassificationInput{Name: "Studio headphones"},
			want:   SlugHeadphone,
			wantOK: true,
		},
		{
			name:   "keyword wins over legacy label",
			in:     ClassificationInput{Name: "iPhone 13", CurrentSlug: "laptop"},
			want:   SlugSmartphone,
			wantOK: true,
		},
		{
			name:   "whitespace only uses legacy",
			in:     ClassificationInput{Name: "   ", Model: " ", CurrentSlug: "gaming-console"},
			want:   SlugGamingConsole,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyProductTypeSlug(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Source(t *testing.T) {
	assert.Equal(t, SourceAccessory, Classify(ClassificationInput{Name: "USB-C Cable"}).Source)
	assert.Equal(t, SourceKeyword, Classify(ClassificationInput{Name: "iPad mini"}).Source)
	assert.Equal(t, SourceFallback, Classify(ClassificationInput{CurrentSlug: "tablet"}).Source)

	none := Classify(ClassificationInput{})
	assert.Equal(t, SourceNone, none.Source)
	assert.Empty(t, none.Slug)
}

func TestNormalizeWarehouseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   CategorySlug
		wantOK bool
	}{
		{in: "Tablet", want: SlugTablet, wantOK: true},
		{in: "ĐIỆN THOẠI", want: SlugSmartphone, wantOK: true},
		{in: "Apple-Watch", want: SlugSmartwatch, wantOK: true},
		{in: "applewatch", want: SlugSmartwatch, wantOK: true},
		{in: "Gaming Console", want: SlugGamingConsole, wantOK: true},
		{in: "gaming-console", want: SlugGamingConsole, wantOK: true},
		{in: "máy tính bảng", want: SlugTablet, wantOK: true},
		{in: "Tai Nghe", want: SlugHeadphone, wantOK: true},
		{in: "", wantOK: false},
		{in: "furniture", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeWarehouseCategory(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliasTable_EverySlugRegistersItself(t *testing.T) {
	for _, slug := range SlugOrder() {
		got, ok := LookupAlias(NormalizeText(string(slug)))
		require.True(t, ok, "slug %s", slug)
		assert.Equal(t, slug, got)

		got, ok = LookupAlias(CompactText(string(slug)))
		require.True(t, ok, "compact slug %s", slug)
		assert.Equal(t, slug, got)
	}
}

func TestContainsAnyWord(t *testing.T) {
	patterns := CompileWordPatterns([]string{"screen protector", "power bank", "cáp sạc"})

	assert.True(t, ContainsAnyWord("tempered screen   protector", patterns))
	assert.True(t, ContainsAnyWord("anker power bank 10000", patterns))
	assert.True(t, ContainsAnyWord("cap sac lightning", patterns))
	assert.False(t, ContainsAnyWord("screenprotector", patterns))
	assert.False(t, ContainsAnyWord("", patterns))
	assert.False(t, ContainsAnyWord("anything", nil))
}

func TestSlugOrder(t *testing.T) {
	order := SlugOrder()
	require.Len(t, order, 13)
	assert.Equal(t, SlugSmartphone, order[0])
	assert.Equal(t, SlugAccessories, order[len(order)-1])

	order[0] = "mutated"
	assert.Equal(t, SlugSmartphone, SlugOrder()[0])

	for _, slug := range order[1:] {
		assert.True(t, slug.IsKnown())
	}
	assert.False(t, CategorySlug("furniture").IsKnown())
}
