package scraper

import (
	"errors"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// DefaultSelectors cover schema.org markup, OpenGraph product tags and a few
// common storefront layouts.
var DefaultSelectors = []string{
	`meta[itemprop="price"]`,
	`meta[property="product:price:amount"]`,
	`meta[property="og:price:amount"]`,
	`[itemprop="price"]`,
	`[data-price]`,
	`.a-price .a-offscreen`,
	`#priceblock_ourprice`,
	`.price`,
}

// ExtractPrice returns the first parseable, non-negative price found by the
// selectors, in order.
func ExtractPrice(doc *goquery.Document, selectors []string) (decimal.Decimal, error) {
	for _, selector := range selectors {
		var (
			found decimal.Decimal
			ok    bool
		)
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, raw := range candidates(s) {
				price, err := ParsePrice(raw)
				if err == nil {
					found, ok = price, true
					return false
				}
			}
			return true
		})
		if ok {
			return found, nil
		}
	}
	return decimal.Zero, ErrPriceNotFound
}

func candidates(s *goquery.Selection) []string {
	var out []string
	if v, ok := s.Attr("content"); ok {
		out = append(out, v)
	}
	if v, ok := s.Attr("data-price"); ok {
		out = append(out, v)
	}
	return append(out, s.Text())
}

var errNoDigits = errors.New("no digits in price text")

// ParsePrice turns storefront text like "$1,299.99" or "1.299,99 €" into a
// decimal amount.
func ParsePrice(text string) (decimal.Decimal, error) {
	var b strings.Builder
	digits := 0
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			digits++
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if digits == 0 {
		return decimal.Zero, errNoDigits
	}
	cleaned := strings.Trim(b.String(), ".,")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, errors.New("negative price")
	}
	return price, nil
}
