// Package translate formats user-visible messages for the current locale.
package translate

import (
	"fmt"
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("flstep: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintln translates an en-US Sprintf() format and writes it, with a
// trailing newline, to w.
func Fprintln(w io.Writer, key message.Reference, args ...any) (err error) {
	_, err = fmt.Fprintln(w, printer.Sprintf(key, args...))
	return
}
