package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL   = errors.New("url is required")
	ErrForeignURL = errors.New("url must be an http(s) link on the product site")
)

// CheckProductURL accepts only http(s) URLs whose host is the host of
// siteBaseURL. Everything the workers and the API fetch on behalf of a
// caller goes through it.
func CheckProductURL(raw, siteBaseURL string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrForeignURL
	}

	site, err := url.Parse(siteBaseURL)
	if err != nil || site.Host == "" {
		return fmt.Errorf("invalid site base url %q", siteBaseURL)
	}

	if u.User != nil || !strings.EqualFold(u.Host, site.Host) {
		return ErrForeignURL
	}

	return nil
}
