package dialogue

import (
	"regexp"
	"strings"
)

var (
	datePattern  = regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}[./]\d{2,4}\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

var recipientKeywords = []string{"получател", "ник", "никнейм", "клан"}

// looksLikePaymentForm decides whether a follow-up message after the payment
// questionnaire reads like a filled form. Signals: recipient keyword, date,
// email, attached PDF receipt. A PDF plus any one other signal suffices;
// otherwise at least two signals are required.
func looksLikePaymentForm(text string, hasPDF bool) bool {
	lower := strings.ToLower(text)

	hasRecipient := false
	for _, word := range recipientKeywords {
		if strings.Contains(lower, word) {
			hasRecipient = true
			break
		}
	}
	hasDate := datePattern.MatchString(lower)
	hasEmail := emailPattern.MatchString(lower)

	if hasPDF && (hasRecipient || hasDate || hasEmail) {
		return true
	}

	count := 0
	for _, signal := range []bool{hasRecipient, hasDate, hasEmail, hasPDF} {
		if signal {
			count++
		}
	}
	return count >= 2
}
