package client

import (
	"trendyol/parser/internal/domain"
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var stateMarkerRegex = regexp.MustCompile(`window\.__PRODUCT_DETAIL_APP_INITIAL_STATE__\s*=\s*`)

// ExtractEmbeddedJSON returns the JSON object assigned to
// window.__PRODUCT_DETAIL_APP_INITIAL_STATE__. Only the first JSON value after
// the assignment is read, so whatever follows the closing brace is ignored.
func ExtractEmbeddedJSON(html string) (json.RawMessage, error) {
	raw, ok := findStateAssignment(html)
	if !ok {
		return nil, ErrStateNotFound
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, &DecodeError{Err: errors.New("state is not a JSON object")}
	}

	var doc json.RawMessage
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&doc); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return doc, nil
}

// ExtractEmbeddedState is ExtractEmbeddedJSON decoded into the product state.
func ExtractEmbeddedState(html string) (*domain.ProductState, error) {
	doc, err := ExtractEmbeddedJSON(html)
	if err != nil {
		return nil, err
	}

	var state domain.ProductState
	if err := DecodeJSON("", doc, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// DecodeJSON decodes an API response body.
func DecodeJSON(url string, body []byte, v interface{}) error {
	if err := json.Unmarshal(bytes.TrimSpace(body), v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// findStateAssignment returns the text right after the first marker whose
// "=" is followed by an object. Script tags are checked first, then the raw
// body. When every marker is followed by something else, the text after the
// first one is returned so the caller can report it as undecodable.
func findStateAssignment(html string) (string, bool) {
	var first *string

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		var found string
		doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
			var ok bool
			found, ok = stateObjectAfterMarker(s.Text(), &first)
			return !ok
		})
		if found != "" {
			return found, true
		}
	}

	if found, ok := stateObjectAfterMarker(html, &first); ok {
		return found, true
	}

	if first != nil {
		return *first, true
	}
	return "", false
}

// stateObjectAfterMarker scans every marker in text and returns what follows
// the first one that opens an object. first records the text after the
// earliest marker seen across calls.
func stateObjectAfterMarker(text string, first **string) (string, bool) {
	for _, loc := range stateMarkerRegex.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if *first == nil {
			*first = &rest
		}
		if strings.HasPrefix(rest, "{") {
			return rest, true
		}
	}
	return "", false
}
