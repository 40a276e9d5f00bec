package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
	// "Rs . 5,000" and "Rs 5 ,000" style OCR splits
	reRupeeDot   = regexp.MustCompile(`(?i)\brs\s+\.`)
	reSplitComma = regexp.MustCompile(`([0-9]) ,([0-9]{2,3})`)
)

// NormalizeText folds compatibility characters (full-width digits, NBSP,
// the full-width percent sign) and collapses noisy OCR whitespace while
// keeping line breaks.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reRupeeDot.ReplaceAllString(s, "Rs.")
	s = reSplitComma.ReplaceAllString(s, "$1,$2")
	return strings.TrimSpace(s)
}
