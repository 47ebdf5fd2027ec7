package connector

// Selector profiles for the retail scrapers. Selectors list the layouts
// each site has shipped, most specific first.
//
//nolint:gochecknoglobals // Static site tables
var (
	ecstuningProfile = siteProfile{
		name:         "ecstuning",
		displayName:  "ECS Tuning",
		baseURL:      "https://www.ecstuning.com",
		searchPath:   "/Search/%s/",
		productSel:   ".product-card, [data-product-id], [class*='product-card'], .product-item, .grid-item",
		titleSel:     ".product-name, .product-title, h3, h4, [class*='title']",
		priceSel:     ".price, .product-price, [class*='price'], .sale-price",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     ".brand, .manufacturer, [class*='brand']",
		partNumSel:   ".part-number, .sku, [class*='partNumber'], [class*='sku']",
		condition:    "New",
		linkCategory: "new_parts",
		needsBrowser: true,
	}

	partsouqProfile = siteProfile{
		name:         "partsouq",
		displayName:  "Partsouq",
		baseURL:      "https://partsouq.com",
		searchPath:   "/en/search/all?q=%s",
		productSel:   ".product-item, .part-item, .search-result, [class*='product']",
		titleSel:     ".product-name, .part-name, h3, h4, [class*='title']",
		priceSel:     ".price, [class*='price']",
		linkSel:      "a[href]",
		imageSel:     "img",
		partNumSel:   ".part-number, .article, [class*='number']",
		condition:    "New",
		linkCategory: "new_parts",
	}

	amazonProfile = siteProfile{
		name:         "amazon",
		displayName:  "Amazon Automotive",
		baseURL:      "https://www.amazon.com",
		searchPath:   "/s?k=%s&i=automotive-intl-ship",
		productSel:   "[data-component-type='s-search-result'], .s-result-item[data-asin]",
		titleSel:     "h2 a span, h2 span, .a-text-normal",
		priceSel:     ".a-price .a-offscreen, .a-price-whole",
		linkSel:      "h2 a[href]",
		imageSel:     "img.s-image",
		condition:    "New",
		linkCategory: "new_parts",
	}

	partsgeekProfile = siteProfile{
		name:         "partsgeek",
		displayName:  "PartsGeek",
		baseURL:      "https://www.partsgeek.com",
		searchPath:   "/search.html?query=%s",
		productSel:   ".product-card, .product-item, [class*='product'], .grid-item",
		titleSel:     ".product-name, .product-title, h3, h4, [class*='title']",
		priceSel:     ".price, .product-price, [class*='price'], .sale-price",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     ".brand, .manufacturer, [class*='brand']",
		partNumSel:   ".part-number, .sku, [class*='partNumber'], [class*='sku']",
		condition:    "New",
		linkCategory: "new_parts",
	}

	autozoneProfile = siteProfile{
		name:         "autozone",
		displayName:  "AutoZone",
		baseURL:      "https://www.autozone.com",
		searchPath:   "/searchresult?searchText=%s",
		productSel:   "[data-testid='product-card'], .product-card, [class*='ProductCard'], .search-result-item",
		titleSel:     "[data-testid='product-title'], .product-title, h3 a, h2 a, [class*='title']",
		priceSel:     "[data-testid='price'], .price, [class*='price']",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     "[class*='brand'], .brand-name",
		condition:    "New",
		linkCategory: "new_parts",
	}

	oreillyProfile = siteProfile{
		name:         "oreilly",
		displayName:  "O'Reilly Auto Parts",
		baseURL:      "https://www.oreillyauto.com",
		searchPath:   "/shop/b/search?q=%s",
		productSel:   ".product-card, [class*='product-card'], [class*='ProductCard'], .search-result-item",
		titleSel:     ".product-title, h3 a, h2 a, [class*='title'], [class*='productName']",
		priceSel:     ".product-price, [class*='price'], .sale-price",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     "[class*='brand'], .brand-name",
		condition:    "New",
		linkCategory: "new_parts",
	}

	napaProfile = siteProfile{
		name:         "napa",
		displayName:  "NAPA Auto Parts",
		baseURL:      "https://www.napaonline.com",
		searchPath:   "/en/search?text=%s",
		productSel:   ".product-card, [class*='product-card'], .search-result-item, [class*='ProductCard']",
		titleSel:     ".product-title, h3 a, h2 a, [class*='title'], [class*='productName']",
		priceSel:     ".product-price, [class*='price'], .sale-price",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     "[class*='brand'], .brand-name",
		partNumSel:   ".part-number, [class*='partNumber'], [class*='sku']",
		condition:    "New",
		linkCategory: "new_parts",
	}

	lkqProfile = siteProfile{
		name:         "lkq",
		displayName:  "LKQ Online",
		baseURL:      "https://www.lkqonline.com",
		searchPath:   "/search?q=%s",
		productSel:   ".product-card, [class*='product'], .search-result, [class*='ProductCard']",
		titleSel:     ".product-title, h3 a, h2 a, [class*='title'], [class*='name']",
		priceSel:     ".product-price, [class*='price']",
		linkSel:      "a[href]",
		imageSel:     "img",
		condition:    "Used",
		linkCategory: "used_salvage",
	}

	advanceautoProfile = siteProfile{
		name:         "advanceauto",
		displayName:  "Advance Auto Parts",
		baseURL:      "https://shop.advanceautoparts.com",
		searchPath:   "/web/SearchResults?searchTerm=%s",
		productSel:   ".product-card, [class*='product-card'], [class*='ProductCard'], .search-result-item",
		titleSel:     ".product-title, h3 a, h2 a, [class*='title'], [class*='productName']",
		priceSel:     ".product-price, [class*='price'], .sale-price",
		linkSel:      "a[href]",
		imageSel:     "img",
		brandSel:     "[class*='brand'], .brand-name",
		condition:    "New",
		linkCategory: "new_parts",
	}
)
