package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"proposalforge-backend/pricing"
)

//go:embed templates/proposal.html.tmpl
var templateFS embed.FS

var proposalTemplate = template.Must(
	template.New("proposal.html.tmpl").Funcs(template.FuncMap{
		"money":  pricing.FormatMoney,
		"amount": pricing.FormatAmount,
		"qty":    pricing.FormatQuantity,
	}).ParseFS(templateFS, "templates/proposal.html.tmpl"),
)

type htmlView struct {
	*Document
	CSS    template.CSS
	Widths [4]int
}

// HTML serialises the document for a print surface. The output depends only on
// the document, so rendering the same input twice yields identical bytes.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	view := htmlView{Document: d, CSS: template.CSS(Stylesheet(d.Style)), Widths: ColumnWidths}
	if err := proposalTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute proposal template: %w", err)
	}
	return buf.String(), nil
}

// Stylesheet builds the CSS for a theme. The page is A4 and the pricing block
// must never split across pages.
func Stylesheet(s Style) string {
	var b strings.Builder
	b.WriteString("@page { size: A4; margin: 0; }\n")
	fmt.Fprintf(&b, "body { margin: 0; font-family: %s; color: %s; background: %s; }\n",
		s.FontFamily, s.Color, orDefault(s.Background, "#ffffff"))
	fmt.Fprintf(&b, ".page { padding: %gpt; }\n", s.PagePadding)
	b.WriteString(textRule(".header", s.Header))
	b.WriteString(".title { margin-top: 0; }\n")
	b.WriteString(textRule(".sub-header", s.SubHeader))
	b.WriteString(textRule(".text", s.Text))
	b.WriteString(".text { margin-top: 0; white-space: pre-wrap; }\n")
	b.WriteString(".pricing { margin-top: 20pt; page-break-inside: avoid; break-inside: avoid; }\n")
	fmt.Fprintf(&b, ".pricing-table { width: 100%%; border-collapse: collapse; margin-top: 15pt; border: %s; }\n",
		orDefault(s.TableBorder, "none"))
	fmt.Fprintf(&b, ".pricing-table th { background: %s; padding: 5pt; text-align: left; }\n",
		orDefault(s.HeaderCellBg, "transparent"))
	b.WriteString(textRule(".pricing-table th", s.HeaderCell))
	fmt.Fprintf(&b, ".pricing-table td { padding: 5pt; border-bottom: %s; }\n", orDefault(s.RowBorder, "none"))
	b.WriteString(textRule(".pricing-table td", s.Cell))
	b.WriteString(".pricing-table tr { page-break-inside: avoid; break-inside: avoid; }\n")
	fmt.Fprintf(&b, ".total-row { margin-top: 5pt; padding: 5pt; background: %s; border-top: %s; }\n",
		orDefault(s.TotalRowBg, "transparent"), orDefault(s.TotalRowRule, "none"))
	b.WriteString(textRule(".total-text", s.Total))
	b.WriteString(".total-text { display: block; }\n")
	fmt.Fprintf(&b, ".converted-total { text-align: right; font-size: %gpt; margin-top: 4pt; }\n", s.Text.FontSize)
	b.WriteString(".terms { margin-top: 20pt; }\n")
	b.WriteString(".signature { margin-top: 40pt; page-break-inside: avoid; break-inside: avoid; }\n")
	b.WriteString(".signature-table { width: 100%; }\n")
	b.WriteString(".signature-table td { width: 50%; padding-right: 24pt; vertical-align: bottom; }\n")
	fmt.Fprintf(&b, ".signature-line { border-bottom: 1px solid %s; height: 36pt; }\n", s.Color)
	return b.String()
}

func textRule(selector string, t TextStyle) string {
	var decls []string
	if t.FontSize > 0 {
		decls = append(decls, fmt.Sprintf("font-size: %gpt", t.FontSize))
	}
	if t.Color != "" {
		decls = append(decls, "color: "+t.Color)
	}
	if t.Bold {
		decls = append(decls, "font-weight: bold")
	} else {
		decls = append(decls, "font-weight: normal")
	}
	if t.Italic {
		decls = append(decls, "font-style: italic")
	}
	if t.Uppercase {
		decls = append(decls, "text-transform: uppercase")
	}
	if t.LetterSpacing > 0 {
		decls = append(decls, fmt.Sprintf("letter-spacing: %gpt", t.LetterSpacing))
	}
	if t.Align != "" {
		decls = append(decls, "text-align: "+t.Align)
	}
	if t.LineHeight > 0 {
		decls = append(decls, fmt.Sprintf("line-height: %g", t.LineHeight))
	}
	decls = append(decls,
		fmt.Sprintf("margin-top: %gpt", t.MarginTop),
		fmt.Sprintf("margin-bottom: %gpt", t.MarginBottom),
	)
	if t.BorderBottom != "" {
		decls = append(decls, "border-bottom: "+t.BorderBottom)
	}
	if t.PaddingBottom > 0 {
		decls = append(decls, fmt.Sprintf("padding-bottom: %gpt", t.PaddingBottom))
	}
	return selector + " { " + strings.Join(decls, "; ") + "; }\n"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
