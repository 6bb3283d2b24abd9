// Package locale renders the currency and time strings shown to shoppers.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders prices and times for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Formatter for the BCP 47 tag, falling back to ko-KR when the
// tag cannot be parsed.
func New(tag string) *Formatter {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.Korean
	}
	return &Formatter{tag: t, printer: message.NewPrinter(t)}
}

// Default is the ko-KR formatter used by the storefront.
func Default() *Formatter {
	return New("ko-KR")
}

func (f *Formatter) Tag() language.Tag { return f.tag }

func (f *Formatter) isKorean() bool {
	base, _ := f.tag.Base()
	return base.String() == "ko"
}

// Price renders an amount with grouping separators, e.g. "159,000원".
func (f *Formatter) Price(amount int64) string {
	if f.isKorean() {
		return f.number(amount) + "원"
	}
	return f.number(amount)
}

func (f *Formatter) number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// TimeOfDay renders t as a local time-of-day string. For Korean this follows
// the browser's ko-KR shape, e.g. "오후 3:04:05".
func (f *Formatter) TimeOfDay(t time.Time) string {
	if !f.isKorean() {
		return t.Format("3:04:05 PM")
	}
	period := "오전"
	if t.Hour() >= 12 {
		period = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %d:%02d:%02d", period, hour, t.Minute(), t.Second())
}

// Stars renders a rating as filled and empty stars, e.g. "★★★★☆".
func Stars(rating float64) string {
	full := int(rating)
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}
