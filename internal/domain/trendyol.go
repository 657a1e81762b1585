package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString accepts both JSON strings and numbers. Trendyol sends ids as
// numbers on product pages and as strings in some API payloads.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// ProductState is the document assigned to
// window.__PRODUCT_DETAIL_APP_INITIAL_STATE__ on a product page.
type ProductState struct {
	Product *Product `json:"product"`
}

type NameBeautified struct {
	Name           string `json:"name"`
	BeautifiedName string `json:"beautifiedName"`
}

type Product struct {
	ID                  FlexString          `json:"id"`
	ProductCode         FlexString          `json:"productCode"`
	ProductGroupID      FlexString          `json:"productGroupId"`
	Name                string              `json:"name"`
	URL                 string              `json:"url"`
	Color               *string             `json:"color"`
	Images              []string            `json:"images"`
	Brand               NameBeautified      `json:"brand"`
	Category            NameBeautified      `json:"category"`
	Gender              *NameBeautified     `json:"gender"`
	DeliveryInformation DeliveryInformation `json:"deliveryInformation"`
	RatingScore         RatingScore         `json:"ratingScore"`
	Variants            []Variant           `json:"variants"`
	AlternativeVariants []Variant           `json:"alternativeVariants"`
}

type DeliveryInformation struct {
	DeliveryDate string `json:"deliveryDate"`
}

type RatingScore struct {
	AverageRating    float64 `json:"averageRating"`
	TotalRatingCount int     `json:"totalRatingCount"`
}

type Variant struct {
	Barcode        FlexString   `json:"barcode"`
	Stock          *int         `json:"stock"`
	Price          VariantPrice `json:"price"`
	URLQuery       *string      `json:"urlQuery"`
	AttributeValue FlexString   `json:"attributeValue"`
}

type VariantPrice struct {
	DiscountedPrice PriceValue `json:"discountedPrice"`
	SellingPrice    PriceValue `json:"sellingPrice"`
}

type PriceValue struct {
	Value float64 `json:"value"`
}

// GroupResponse is the productGroup API payload.
type GroupResponse struct {
	Result *GroupResult `json:"result"`
}

type GroupResult struct {
	SlicingAttributes []SlicingAttribute `json:"slicingAttributes"`
}

// SlicingAttribute is the dimension (usually color) whose values live on
// separate product pages.
type SlicingAttribute struct {
	DisplayName string           `json:"displayName"`
	Attributes  []GroupAttribute `json:"attributes"`
}

type GroupAttribute struct {
	Name           string         `json:"name"`
	BeautifiedName string         `json:"beautifiedName"`
	Contents       []GroupContent `json:"contents"`
}

type GroupContent struct {
	ID  FlexString `json:"id"`
	URL string     `json:"url"`
}

// SlicingContent is one sibling page of a group together with the
// attribute metadata it was listed under.
type SlicingContent struct {
	URL                string `json:"url"`
	Name               string `json:"name"`
	AttrName           string `json:"attrName"`
	AttrBeautifiedName string `json:"attrBeautifiedName"`
}
