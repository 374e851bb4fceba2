package paginate

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// DefaultVolatileAttrs are attributes that change between renders of the same page.
var DefaultVolatileAttrs = []string{"nonce", "data-timestamp", "data-request-id"}

var interTagSpace = regexp.MustCompile(`>\s+<`)

// Canonicalize returns the serialization fingerprints are computed over:
// volatile attributes removed, Unicode NFC, whitespace between tags dropped
// and remaining whitespace runs collapsed.
func Canonicalize(fragment string, volatileAttrs []string) string {
	s := fragment
	if len(volatileAttrs) > 0 {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
			all := doc.Find("*")
			for _, attr := range volatileAttrs {
				all.RemoveAttr(attr)
			}
			if html, err := doc.Html(); err == nil {
				s = html
			}
		}
	}
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return interTagSpace.ReplaceAllString(s, "><")
}

// Fingerprint returns a hex SHA-256 of the canonical fragment.
func Fingerprint(fragment string, volatileAttrs []string) string {
	sum := sha256.Sum256([]byte(Canonicalize(fragment, volatileAttrs)))
	return hex.EncodeToString(sum[:])
}
