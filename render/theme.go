package render

import "strings"

// Theme names a fixed bundle of typography, colour and spacing rules.
type Theme string

const (
	ThemeCorporate Theme = "corporate"
	ThemeCreative  Theme = "creative"
	ThemeMinimal   Theme = "minimal"
	ThemeModern    Theme = "modern"
)

// DefaultTheme is used for unknown or empty theme names.
const DefaultTheme = ThemeCorporate

// ParseTheme maps a name to a known theme, falling back to DefaultTheme.
func ParseTheme(name string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := themes[t]; ok {
		return t
	}
	return DefaultTheme
}

// Themes lists the known themes in display order.
func Themes() []Theme {
	return []Theme{ThemeCorporate, ThemeCreative, ThemeMinimal, ThemeModern}
}

// TextStyle is a block of text rules.
type TextStyle struct {
	FontSize      float64
	Color         string
	Bold          bool
	Italic        bool
	Uppercase     bool
	LetterSpacing float64
	Align         string
	LineHeight    float64
	MarginTop     float64
	MarginBottom  float64
	BorderBottom  string
	PaddingBottom float64
}

// Style is the full rule set of a theme. Sizes are in points.
type Style struct {
	FontFamily   string
	Color        string
	Background   string
	PagePadding  float64
	Header       TextStyle
	SubHeader    TextStyle
	Text         TextStyle
	TableBorder  string
	HeaderCellBg string
	HeaderCell   TextStyle
	Cell         TextStyle
	RowBorder    string
	TotalRowBg   string
	TotalRowRule string
	Total        TextStyle
}

// StyleFor returns the rule set for t, falling back to the default theme.
func StyleFor(t Theme) Style {
	if s, ok := themes[t]; ok {
		return s
	}
	return themes[DefaultTheme]
}

var themes = map[Theme]Style{
	ThemeCorporate: {
		FontFamily:  "Helvetica, Arial, sans-serif",
		Color:       "#333333",
		Background:  "#ffffff",
		PagePadding: 40,
		Header:      TextStyle{FontSize: 24, Color: "#1a365d", Bold: true, Align: "center", MarginBottom: 20},
		SubHeader: TextStyle{FontSize: 16, Color: "#2b6cb0", Bold: true, MarginTop: 20, MarginBottom: 10,
			BorderBottom: "1px solid #e2e8f0", PaddingBottom: 5},
		Text:         TextStyle{FontSize: 11, Color: "#4a5568", LineHeight: 1.5, MarginBottom: 10},
		TableBorder:  "1px solid #000000",
		HeaderCellBg: "#edf2f7",
		HeaderCell:   TextStyle{FontSize: 10, Color: "#2d3748", Bold: true},
		Cell:         TextStyle{FontSize: 10, Color: "#4a5568"},
		RowBorder:    "1px solid #000000",
		TotalRowBg:   "#e2e8f0",
		Total:        TextStyle{FontSize: 12, Color: "#1a365d", Bold: true, Align: "right"},
	},
	ThemeCreative: {
		FontFamily:  "'Times New Roman', Times, serif",
		Color:       "#2d3748",
		Background:  "#fffaf0",
		PagePadding: 40,
		Header: TextStyle{FontSize: 28, Color: "#dd6b20", Italic: true, MarginBottom: 20,
			BorderBottom: "2px solid #dd6b20", PaddingBottom: 10},
		SubHeader:    TextStyle{FontSize: 18, Color: "#c05621", Italic: true, MarginTop: 20, MarginBottom: 10},
		Text:         TextStyle{FontSize: 12, LineHeight: 1.6, MarginBottom: 10},
		TableBorder:  "2px solid #dd6b20",
		HeaderCellBg: "#feebc8",
		HeaderCell:   TextStyle{FontSize: 11, Color: "#9c4221", Italic: true},
		Cell:         TextStyle{FontSize: 11, Color: "#591c0b"},
		RowBorder:    "1px solid #fbd38d",
		TotalRowBg:   "#feebc8",
		Total:        TextStyle{FontSize: 14, Color: "#dd6b20", Italic: true, Align: "right"},
	},
	ThemeMinimal: {
		FontFamily:   "'Courier New', Courier, monospace",
		Color:        "#000000",
		Background:   "#ffffff",
		PagePadding:  50,
		Header:       TextStyle{FontSize: 20, Uppercase: true, LetterSpacing: 2, MarginBottom: 30},
		SubHeader:    TextStyle{FontSize: 14, Uppercase: true, MarginTop: 30, MarginBottom: 15},
		Text:         TextStyle{FontSize: 10, LineHeight: 1.4, MarginBottom: 8},
		HeaderCell:   TextStyle{FontSize: 9, Uppercase: true},
		Cell:         TextStyle{FontSize: 9},
		RowBorder:    "1px solid #000000",
		TotalRowRule: "2px solid #000000",
		Total:        TextStyle{FontSize: 11, Uppercase: true, Align: "right"},
	},
	ThemeModern: {
		FontFamily:  "'Inter', 'Segoe UI', Roboto, sans-serif",
		Color:       "#1f2937",
		Background:  "#ffffff",
		PagePadding: 44,
		Header: TextStyle{FontSize: 26, Color: "#111827", Bold: true, MarginBottom: 24,
			BorderBottom: "4px solid #6366f1", PaddingBottom: 8},
		SubHeader:    TextStyle{FontSize: 15, Color: "#4f46e5", Bold: true, Uppercase: true, LetterSpacing: 1, MarginTop: 22, MarginBottom: 8},
		Text:         TextStyle{FontSize: 11, Color: "#374151", LineHeight: 1.6, MarginBottom: 8},
		HeaderCellBg: "#eef2ff",
		HeaderCell:   TextStyle{FontSize: 10, Color: "#3730a3", Bold: true, Uppercase: true},
		Cell:         TextStyle{FontSize: 10, Color: "#374151"},
		RowBorder:    "1px solid #e5e7eb",
		TotalRowBg:   "#4f46e5",
		Total:        TextStyle{FontSize: 13, Color: "#ffffff", Bold: true, Align: "right"},
	},
}
