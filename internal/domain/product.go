package domain

// NamedSlug is a display name paired with its URL-safe form.
type NamedSlug struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Rating struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// ParserResponse is the aggregate result of one parse run.
type ParserResponse struct {
	Products []ParsedProduct `json:"products"` // One entry per visited variant URL, in visit order
	Delivery string          `json:"delivery"` // Free-text delivery estimate
	Category NamedSlug       `json:"category"`
	Brand    NamedSlug       `json:"brand"`
	Gender   *string         `json:"gender"`
	GroupID  string          `json:"groupId"`
	Rating   Rating          `json:"rating"`
}

// NewParserResponse returns an empty response with a non-nil product list.
func NewParserResponse() *ParserResponse {
	return &ParserResponse{
		Products: make([]ParsedProduct, 0),
	}
}

// ParsedProduct is one product as seen at one URL.
type ParsedProduct struct {
	Attachments []string         `json:"attachments"` // Absolute image URLs
	URL         string           `json:"url"`
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Barcode     string           `json:"barcode"` // Site SKU (productCode)
	Color       *string          `json:"color"`
	Variants    []ProductVariant `json:"variants"`
}

// ProductVariant is one purchasable SKU within a product.
type ProductVariant struct {
	Barcode  string   `json:"barcode"`
	Stock    *int     `json:"stock"` // nil means not limited
	Price    float64  `json:"price"`
	OldPrice *float64 `json:"old_price"` // nil when there is no discount
	Discount int      `json:"discount"`
	Value    string   `json:"value"` // Differentiating attribute value, e.g. a size label
	URL      string   `json:"url"`
}
