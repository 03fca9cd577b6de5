package site

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Otodom struct{}

func NewOtodom() *Otodom {
	return &Otodom{}
}

func (o *Otodom) Name() string {
	return SiteOtodom
}

func (o *Otodom) Domain() string {
	return "otodom.pl"
}

func (o *Otodom) DefaultURL() string {
	return "https://www.otodom.pl/wynajem/mieszkanie"
}

func (o *Otodom) Entries(doc *goquery.Document) *goquery.Selection {
	return doc.Find("div.offer-item-details")
}

func (o *Otodom) PriceField(entry *goquery.Selection) *goquery.Selection {
	return entry.Find("li.offer-item-price").First()
}

func (o *Otodom) DetailLink(entry *goquery.Selection) string {
	return firstLink(entry)
}

func (o *Otodom) HiddenFeeField(doc *goquery.Document) *goquery.Selection {
	fee := doc.Find("div.css-1ytkscc.ecjfvbm0[title]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.AttrOr("title", ""), "zł")
	}).First()
	if fee.Length() > 0 {
		return fee
	}
	return doc.Find(`[data-testid="table-value-rent"]`).First()
}
