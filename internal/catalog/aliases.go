package catalog

// synonyms lists, per slug, the free-text phrases (English, Vietnamese,
// brand and product-family names) that identify the category.
var synonyms = map[CategorySlug][]string{
	SlugSmartphone: {
		"smartphone", "smart phone", "phone", "mobile phone", "cell phone",
		"điện thoại", "điện thoại di động", "dtdd",
		"iphone", "xiaomi", "redmi", "oppo", "vivo", "realme", "oneplus", "nokia", "pixel",
		"galaxy s", "galaxy z", "galaxy a", "galaxy m", "galaxy note", "galaxy fold", "galaxy flip",
	},
	SlugTablet: {
		"tablet", "máy tính bảng", "ipad", "ipad pro", "ipad air", "ipad mini",
		"galaxy tab", "matepad",
	},
	SlugSmartwatch: {
		"smartwatch", "smart watch", "apple watch", "đồng hồ thông minh", "đồng hồ",
		"watch series", "watch ultra", "watch se", "galaxy watch", "garmin", "amazfit",
		"redmi watch", "xiaomi watch", "mi watch", "huawei watch", "watch gt", "mi band",
		"smart band", "vòng đeo tay thông minh", "fitbit",
	},
	SlugLaptop: {
		"laptop", "notebook", "macbook", "macbook air", "macbook pro", "máy tính xách tay",
		"ultrabook", "thinkpad", "chromebook",
	},
	SlugHeadphone: {
		"headphone", "headphones", "earphone", "earphones", "earbud", "earbuds", "headset",
		"airpods", "airpods pro", "airpods max", "tai nghe", "galaxy buds", "beats",
	},
	SlugTV: {
		"tv", "television", "smart tv", "tivi", "apple tv",
	},
	SlugMonitor: {
		"monitor", "màn hình", "studio display", "pro display xdr",
	},
	SlugKeyboard: {
		"keyboard", "bàn phím", "magic keyboard",
	},
	SlugMouse: {
		"mouse", "chuột", "magic mouse", "trackpad", "magic trackpad",
	},
	SlugSpeaker: {
		"speaker", "loa", "homepod", "soundbar", "bluetooth speaker",
	},
	SlugCamera: {
		"camera", "máy ảnh", "webcam", "action cam", "gopro", "dslr", "mirrorless",
	},
	SlugGamingConsole: {
		"gaming console", "game console", "console", "máy chơi game", "playstation",
		"ps4", "ps5", "xbox", "nintendo switch", "nintendo", "steam deck",
	},
	SlugAccessories: {
		"accessory", "accessories", "phụ kiện", "charger", "củ sạc", "cáp sạc", "cable",
		"case", "ốp lưng", "screen protector", "miếng dán", "adapter", "power bank",
		"sạc dự phòng", "dock", "strap", "dây đeo", "band", "stand", "cover",
		"magsafe", "apple pencil", "airtag",
	},
}

// aliasTable maps both the normalized and compact form of every alias
// (slugs included) to its slug. Read-only after package init.
var aliasTable = buildAliasTable()

func buildAliasTable() map[string]CategorySlug {
	table := make(map[string]CategorySlug)
	register := func(alias string, slug CategorySlug) {
		normalized := NormalizeText(alias)
		if normalized == "" {
			return
		}
		// first registration wins, iteration follows slugOrder so it is deterministic
		if _, exists := table[normalized]; !exists {
			table[normalized] = slug
		}
		compact := CompactText(alias)
		if _, exists := table[compact]; !exists {
			table[compact] = slug
		}
	}

	for _, slug := range slugOrder {
		register(string(slug), slug)
		for _, alias := range synonyms[slug] {
			register(alias, slug)
		}
	}
	return table
}

// LookupAlias resolves an already normalized or compact alias.
func LookupAlias(key string) (CategorySlug, bool) {
	slug, ok := aliasTable[key]
	return slug, ok
}
