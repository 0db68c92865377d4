// internal/amount/parse.go
package amount

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyGroup captures a dollar figure with optional thousands
// separators and an optional two-digit fraction.
const moneyGroup = `(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`

// parseAmount normalizes a captured figure: thousands separators are
// stripped and the value parsed as a decimal. Non-finite and
// non-positive results are rejected.
func parseAmount(raw string) (float64, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

var codeIndicators = regexp.MustCompile(`[{}();,=&|!]+.*[{}();,=&|!]+`)

var codeKeywords = []string{
	"function", "var ", "return ", "typeof", "Object.", "prototype",
}

// looksLikeCode filters element text that is really inlined script or
// minified markup. A single such element polluting a pass must not
// poison the candidates.
func looksLikeCode(text string) bool {
	if len(text) > 1000 {
		return true
	}
	for _, kw := range codeKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	if codeIndicators.MatchString(text) {
		dense := strings.Join(strings.Fields(text), "")
		if len(dense) > 100 {
			return true
		}
	}
	return false
}
