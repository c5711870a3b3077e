package semantic

import "github.com/fwojciec/pagesense"

// categoryFields lists the fields the completion service is asked for per
// page category.
var categoryFields = map[pagesense.PageType][]string{
	pagesense.PageTypeProduct: {
		"name", "price", "currency", "availability", "brand", "rating",
		"description", "specs",
	},
	pagesense.PageTypeCampground: {
		"name", "address", "phone", "amenities", "price_per_night",
		"reservation_url", "rating", "description",
	},
	pagesense.PageTypeBusiness: {
		"name", "address", "phone", "hours", "website", "rating",
		"description",
	},
	pagesense.PageTypeArticle: {
		"title", "author", "published", "summary", "topics",
	},
	pagesense.PageTypeComparison: {
		"items", "criteria", "winner", "summary",
	},
	pagesense.PageTypeListing: {
		"items", "total_results", "filters",
	},
	pagesense.PageTypeForm: {
		"purpose", "fields", "required_fields", "submit_label",
	},
}

// genericFields is the fallback request for unknown categories.
var genericFields = []string{"title", "summary", "key_facts", "links"}
