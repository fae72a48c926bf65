package table

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders numbers and dates for one locale.
type Formatter struct {
	tag        language.Tag
	printer    *message.Printer
	dateLayout string
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{
		tag:        tag,
		printer:    message.NewPrinter(tag),
		dateLayout: dateLayoutFor(tag),
	}
}

// ParseLocale returns the formatter for a BCP 47 tag, falling back to en-US.
func ParseLocale(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.AmericanEnglish
	}
	return NewFormatter(tag)
}

func (f *Formatter) Locale() string {
	return f.tag.String()
}

func (f *Formatter) Number(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout)
}

func dateLayoutFor(tag language.Tag) string {
	base, _ := tag.Base()
	region, _ := tag.Region()

	switch base.String() {
	case "en":
		switch region.String() {
		case "US", "ZZ", "PH":
			return "1/2/2006"
		case "CA":
			return "2006-01-02"
		}
		return "02/01/2006"
	case "de", "ru", "pl", "tr", "fi", "nb", "cs":
		return "02.01.2006"
	case "fr", "es", "it", "pt", "el", "vi":
		return "02/01/2006"
	case "nl":
		return "2-1-2006"
	case "ja", "zh":
		return "2006/1/2"
	case "ko":
		return "2006. 1. 2."
	}
	return "2006-01-02"
}

var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range dateInputLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
