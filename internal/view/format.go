// Package view turns backend metrics into display values: text, CSS classes,
// colors and marker geometry. Nothing here does I/O.
package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers and dates for one viewer locale.
type Formatter struct {
	tag     language.Tag
	months  monday.Locale
	printer *message.Printer
}

// NewFormatter builds a Formatter for a BCP 47 tag such as "en-US" or "de".
func NewFormatter(locale string) (*Formatter, error) {
	tag := language.English
	if locale != "" {
		t, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
		}
		tag = t
	}
	return &Formatter{tag: tag, months: calendarLocale(tag), printer: message.NewPrinter(tag)}, nil
}

// DefaultFormatter formats for English.
func DefaultFormatter() *Formatter {
	return &Formatter{tag: language.English, months: monday.LocaleEnUS, printer: message.NewPrinter(language.English)}
}

// calendarLocale picks the month-name table for tag, falling back to US
// English when none matches its language and likely region.
func calendarLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	region, _ := tag.Region()
	want := monday.Locale(base.String() + "_" + region.String())
	for _, l := range monday.ListLocales() {
		if l == want {
			return l
		}
	}
	return monday.LocaleEnUS
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Thousands formats n with the locale's digit grouping.
func (f *Formatter) Thousands(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// MonthLabel formats a date as an abbreviated month in the viewer's language
// and a two-digit year.
func (f *Formatter) MonthLabel(t time.Time) string {
	return monday.Format(t, "Jan 06", f.months)
}

// Number prints v with the shortest exact representation.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Percent formats a fraction as a percentage with one fractional digit.
func Percent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"
}
