package catalog

import (
	"net/url"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"

	"storefront/internal/site"
)

// Form is the admin product form.
type Form struct {
	Name        string           `schema:"name"`
	Category    string           `schema:"category"`
	Farm        string           `schema:"farm"`
	Description string           `schema:"description"`
	OrderLink   string           `schema:"order_link"`
	Quantities  []string         `schema:"quantity"`
	Units       []string         `schema:"unit"`
	Prices      []string         `schema:"price"`
	SocialLinks site.SocialLinks `schema:"-"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	// Empty cells must keep their slot so the price lists stay aligned.
	d.ZeroEmpty(true)
	return d
}

// DecodeForm reads a product form, including the four social link fields.
func DecodeForm(values url.Values) (Form, error) {
	var f Form
	if err := decoder.Decode(&f, values); err != nil {
		return Form{}, errors.Wrap(err, "decode product form")
	}
	if err := decoder.Decode(&f.SocialLinks, values); err != nil {
		return Form{}, errors.Wrap(err, "decode product social links")
	}
	return f, nil
}

// Apply copies the form onto p. Prices and social links are always
// replaced; image and video are left to the caller.
func (f Form) Apply(p *Product) error {
	prices, err := BuildPrices(ZipPriceRows(f.Quantities, f.Units, f.Prices))
	if err != nil {
		return err
	}
	p.Name = f.Name
	p.Category = f.Category
	p.Farm = f.Farm
	p.Description = f.Description
	p.OrderLink = f.OrderLink
	p.Prices = prices
	p.SocialLinks = f.SocialLinks
	return nil
}
