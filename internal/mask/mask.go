// Package mask turns email-shaped identities into privacy-preserving labels
// for on-screen display. Nothing masked here is ever persisted or sent.
package mask

import (
	"regexp"
	"strings"
)

var emailLike = regexp.MustCompile(`[^\s、]+@[^\s、]+`)

// Display masks a single identity: "dfwedasfwes@wqe.com" becomes
// "d*****@****.***". Values without a local part before '@' are returned trimmed.
func Display(value string) string {
	s := strings.TrimSpace(value)
	at := strings.IndexByte(s, '@')
	if at <= 0 {
		return s
	}
	first, _ := firstRune(s)
	return first + "*****@****.***"
}

// InText masks every email-like run inside free text.
func InText(text string) string {
	return emailLike.ReplaceAllStringFunc(text, Display)
}

func firstRune(s string) (string, bool) {
	for _, r := range s {
		return string(r), true
	}
	return "*", false
}
