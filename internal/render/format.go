// Package render turns dashboard views into HTML pages, chart images and
// GeoJSON.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Tons formats a tonnage with thousands separators and two decimals.
func Tons(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Pounds formats a pound total with thousands separators and no decimals.
func Pounds(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}
