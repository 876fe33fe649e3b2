// Package render turns a proposal into a themed, paginated document.
//
// Rendering is split in two steps. Render builds a Document, a pure and
// deterministic layout model of the proposal. Document.HTML serialises that
// model for a print surface, and a Printer turns the HTML into a PDF using the
// surface's native pagination.
package render

import (
	"strings"

	"proposalforge-backend/models"
	"proposalforge-backend/pricing"
)

// Column widths of the pricing table, in percent.
var ColumnWidths = [4]int{40, 20, 20, 20}

// Input is everything needed to render one proposal.
type Input struct {
	Theme       Theme
	ClientName  string
	Markdown    string
	LineItems   []models.LineItem
	TotalAmount float64
	Extras      Extras
}

// Extras are optional sections appended after the pricing table.
type Extras struct {
	Currency  *CurrencyConversion `json:"currency,omitempty"`
	Terms     string              `json:"terms,omitempty"`
	Signature *SignatureBlock     `json:"signature,omitempty"`
}

// CurrencyConversion shows the total converted at a fixed rate.
type CurrencyConversion struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
}

// SignatureBlock names the two signing parties.
type SignatureBlock struct {
	PreparedBy string `json:"prepared_by"`
	ClientName string `json:"client_name"`
}

// Document is the layout model of a rendered proposal.
type Document struct {
	Theme   Theme         `json:"theme"`
	Style   Style         `json:"-"`
	Title   string        `json:"title"`
	Body    []Line        `json:"body"`
	Pricing *PricingTable `json:"pricing,omitempty"`
	Terms   []Line        `json:"terms,omitempty"`

	Signature *SignatureBlock `json:"signature,omitempty"`

	// TotalMismatch is set when the supplied total disagreed with the line
	// items. The recomputed total is the one rendered.
	TotalMismatch bool `json:"total_mismatch"`
}

// PricingTable is kept together on one page when printed.
type PricingTable struct {
	Rows      []PricingRow     `json:"rows"`
	Total     float64          `json:"total"`
	Converted *ConvertedAmount `json:"converted,omitempty"`
}

// PricingRow is one line item with its subtotal.
type PricingRow struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// ConvertedAmount is the secondary total shown under the primary one.
type ConvertedAmount struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// Render builds the document for in. It never fails: unknown themes fall back
// to the default and items with a blank description are left out of the table.
func Render(in Input) *Document {
	theme := ParseTheme(string(in.Theme))
	total := pricing.ComputeTotal(in.LineItems)

	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		clientName = "Client"
	}

	doc := &Document{
		Theme:         theme,
		Style:         StyleFor(theme),
		Title:         "Proposal for " + clientName,
		Body:          ParseMarkdown(in.Markdown),
		TotalMismatch: !pricing.Equal(total, in.TotalAmount),
	}

	var rows []PricingRow
	for _, item := range ValidItems(in.LineItems) {
		rows = append(rows, PricingRow{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    pricing.LineSubtotal(item),
		})
	}
	if len(rows) > 0 {
		doc.Pricing = &PricingTable{Rows: rows, Total: total}
		if c := in.Extras.Currency; c != nil && strings.TrimSpace(c.Code) != "" && c.Rate > 0 {
			doc.Pricing.Converted = &ConvertedAmount{
				Code:   strings.ToUpper(strings.TrimSpace(c.Code)),
				Amount: total * c.Rate,
			}
		}
	}

	if terms := strings.TrimSpace(in.Extras.Terms); terms != "" {
		doc.Terms = ParseMarkdown(terms)
	}

	if sig := in.Extras.Signature; sig != nil {
		block := *sig
		if strings.TrimSpace(block.ClientName) == "" {
			block.ClientName = clientName
		}
		doc.Signature = &block
	}

	return doc
}

// ValidItems returns the items worth rendering: those with a non-blank
// description. The input slice is not modified.
func ValidItems(items []models.LineItem) []models.LineItem {
	valid := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Description) != "" {
			valid = append(valid, item)
		}
	}
	return valid
}
