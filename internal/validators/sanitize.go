package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MKhiriev/go-pseudo-ledger/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxNameRunes      = 64
	MinPseudonymRunes = 2
	MaxPseudonymRunes = 64
	MaxItemRunes      = 128
)

// Sanitized is a cleaned user-supplied string. Display keeps the original
// casing, Key is the case-folded form used for comparisons and fingerprints.
type Sanitized struct {
	Display string
	Key     string
}

// SanitizeName cleans a raw participant name coming straight from chat or
// web input: NFC normalisation, whitespace collapsed, control and format
// characters rejected.
func SanitizeName(raw string) (Sanitized, error) {
	s, ok := sanitize(raw, 1, MaxNameRunes)
	if !ok {
		return Sanitized{}, models.ErrInvalidName
	}
	return s, nil
}

// SanitizePseudonym applies the same rules to a caller supplied alias.
func SanitizePseudonym(raw string) (Sanitized, error) {
	s, ok := sanitize(raw, MinPseudonymRunes, MaxPseudonymRunes)
	if !ok {
		return Sanitized{}, models.ErrInvalidPseudonym
	}
	return s, nil
}

// SanitizeItem cleans an item reference.
func SanitizeItem(raw string) (string, error) {
	s, ok := sanitize(raw, 1, MaxItemRunes)
	if !ok {
		return "", models.ErrInvalidItem
	}
	return s.Display, nil
}

// FoldKey returns the comparison key of an already sanitised string.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func sanitize(raw string, minRunes, maxRunes int) (Sanitized, bool) {
	if !utf8.ValidString(raw) {
		return Sanitized{}, false
	}

	normalized := norm.NFC.String(raw)
	for _, r := range normalized {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return Sanitized{}, false
		}
		if unicode.Is(unicode.Cf, r) {
			return Sanitized{}, false
		}
	}

	// collapses every run of whitespace, including newlines, to one space
	display := strings.Join(strings.Fields(normalized), " ")

	n := utf8.RuneCountInString(display)
	if n < minRunes || n > maxRunes {
		return Sanitized{}, false
	}

	return Sanitized{Display: display, Key: cases.Fold().String(display)}, true
}
