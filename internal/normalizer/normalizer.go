// Package normalizer maps Trendyol's upstream JSON shapes onto the parser DTOs.
package normalizer

import (
	"trendyol/parser/internal/domain"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Normalizer struct {
	imageBaseURL string
	siteBaseURL  string
}

func New(imageBaseURL, siteBaseURL string) *Normalizer {
	return &Normalizer{
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		siteBaseURL:  strings.TrimRight(siteBaseURL, "/"),
	}
}

// BuildProduct converts one upstream product. Variants keep upstream order:
// main variants first, then alternative variants.
func (n *Normalizer) BuildProduct(product *domain.Product) domain.ParsedProduct {
	attachments := make([]string, 0, len(product.Images))
	for _, image := range product.Images {
		attachments = append(attachments, n.imageBaseURL+image)
	}

	parsed := domain.ParsedProduct{
		Attachments: attachments,
		URL:         n.siteBaseURL + product.URL,
		ID:          product.ID.String(),
		Name:        product.Name,
		Barcode:     product.ProductCode.String(),
		Color:       product.Color,
		Variants:    make([]domain.ProductVariant, 0, len(product.Variants)+len(product.AlternativeVariants)),
	}

	for _, variant := range product.Variants {
		parsed.Variants = append(parsed.Variants, n.BuildVariant(variant, product.URL))
	}
	for _, variant := range product.AlternativeVariants {
		parsed.Variants = append(parsed.Variants, n.BuildVariant(variant, product.URL))
	}

	return parsed
}

// BuildVariant converts one upstream variant. productURL is the product's
// site-relative path; the variant's urlQuery is appended to it.
func (n *Normalizer) BuildVariant(variant domain.Variant, productURL string) domain.ProductVariant {
	price := variant.Price.DiscountedPrice.Value
	sellingPrice := variant.Price.SellingPrice.Value

	pv := domain.ProductVariant{
		Barcode:  variant.Barcode.String(),
		Stock:    variant.Stock,
		Price:    price,
		Discount: Discount(price, sellingPrice),
		Value:    variant.AttributeValue.String(),
		URL:      n.siteBaseURL + productURL,
	}

	if variant.URLQuery != nil {
		pv.URL += *variant.URLQuery
	}

	if pv.Discount > 0 {
		oldPrice := sellingPrice
		pv.OldPrice = &oldPrice
	}

	return pv
}

// Discount is ceil(100 - 100*price/referencePrice) as a whole percentage.
// A non-positive reference price or a price above it yields 0.
func Discount(price, referencePrice float64) int {
	if referencePrice <= 0 {
		return 0
	}

	p := decimal.NewFromFloat(price)
	ref := decimal.NewFromFloat(referencePrice)

	discount := hundred.Sub(hundred.Mul(p).Div(ref)).Ceil()
	if discount.IsNegative() {
		return 0
	}

	return int(discount.IntPart())
}

// ApplyBase copies the group-wide fields of a product onto the response.
func (n *Normalizer) ApplyBase(resp *domain.ParserResponse, product *domain.Product) {
	resp.Brand = domain.NamedSlug{
		Name: product.Brand.Name,
		Slug: product.Brand.BeautifiedName,
	}
	resp.Category = domain.NamedSlug{
		Name: product.Category.Name,
		Slug: product.Category.BeautifiedName,
	}

	resp.Gender = nil
	if product.Gender != nil {
		gender := product.Gender.Name
		resp.Gender = &gender
	}

	resp.Delivery = product.DeliveryInformation.DeliveryDate
	resp.GroupID = product.ProductGroupID.String()
	resp.Rating = domain.Rating{
		Avg:   product.RatingScore.AverageRating,
		Count: product.RatingScore.TotalRatingCount,
	}
}

// AbsoluteURL prefixes site-relative paths with the site base.
func (n *Normalizer) AbsoluteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return n.siteBaseURL + path
}

// SlicingAttribute returns the group's first slicing attribute, or nil when
// the group has none.
func SlicingAttribute(group *domain.GroupResponse) *domain.SlicingAttribute {
	if group == nil || group.Result == nil || len(group.Result.SlicingAttributes) == 0 {
		return nil
	}
	return &group.Result.SlicingAttributes[0]
}

// SlicingContents flattens every content of every attribute, in order.
func SlicingContents(attr *domain.SlicingAttribute) []domain.SlicingContent {
	if attr == nil {
		return nil
	}

	var contents []domain.SlicingContent
	for _, attribute := range attr.Attributes {
		for _, content := range attribute.Contents {
			contents = append(contents, domain.SlicingContent{
				URL:                content.URL,
				Name:               attr.DisplayName,
				AttrName:           attribute.Name,
				AttrBeautifiedName: attribute.BeautifiedName,
			})
		}
	}

	return contents
}
