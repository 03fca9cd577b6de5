package site

import "github.com/PuerkitoBio/goquery"

const olxFeeLabel = "Czynsz"

type OLX struct{}

func NewOLX() *OLX {
	return &OLX{}
}

func (o *OLX) Name() string {
	return SiteOLX
}

func (o *OLX) Domain() string {
	return "olx.pl"
}

func (o *OLX) DefaultURL() string {
	return "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/"
}

func (o *OLX) Entries(doc *goquery.Document) *goquery.Selection {
	return doc.Find("div.offer-wrapper")
}

func (o *OLX) PriceField(entry *goquery.Selection) *goquery.Selection {
	return entry.Find("p.price strong").First()
}

func (o *OLX) DetailLink(entry *goquery.Selection) string {
	return firstLink(entry)
}

func (o *OLX) HiddenFeeField(doc *goquery.Document) *goquery.Selection {
	// Older layout: a details table with a labeled name span.
	if name := labeled(doc, "span.offer-details__name", olxFeeLabel); name.Length() > 0 {
		return name.Parent().Find("strong").First()
	}
	return labeled(doc, "p.css-xl6fe0-Text.eu5v0x0", "Czynsz (dodatkowo):")
}
