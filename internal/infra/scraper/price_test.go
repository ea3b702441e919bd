package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$95", "95"},
		{"$1,299.99", "1299.99"},
		{"1.299,99 €", "1299.99"},
		{"19,99", "19.99"},
		{"1,299", "1299"},
		{"1.299.000", "1299000"},
		{"  USD 120.00 ", "120"},
		{"99.", "99"},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParsePriceRejects(t *testing.T) {
	for _, in := range []string{"", "free", "-5", "Call for price"} {
		if _, err := ParsePrice(in); err == nil {
			t.Errorf("ParsePrice(%q) expected error", in)
		}
	}
}

func TestExtractPriceSelectorOrder(t *testing.T) {
	html := `<html><head><meta itemprop="price" content="89.90"></head>
<body><span class="price">$120.00</span></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ExtractPrice(doc, DefaultSelectors)
	if err != nil {
		t.Fatalf("ExtractPrice: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("89.90")) {
		t.Fatalf("price = %s, want 89.90", got)
	}
}

func TestExtractPriceSkipsUnparseable(t *testing.T) {
	html := `<div class="price">Call us</div><div class="price">€ 45,50</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ExtractPrice(doc, []string{".price"})
	if err != nil {
		t.Fatalf("ExtractPrice: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("price = %s, want 45.50", got)
	}
}

func TestExtractPriceNotFound(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>nothing here</p>`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractPrice(doc, DefaultSelectors); err != ErrPriceNotFound {
		t.Fatalf("err = %v, want ErrPriceNotFound", err)
	}
}
