package presenter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	nonDigits    = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Subscription form messages.
const (
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email address"
)

// FormatPhoneNumber renders 10 digit numbers as (xxx) xxx-xxxx and 11 digit
// numbers with a leading 1 as +1 (xxx) xxx-xxxx. Anything else is returned
// unchanged.
func FormatPhoneNumber(phone string) string {
	digits := Digits(phone)
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	default:
		return phone
	}
}

// Digits strips every non-digit.
func Digits(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

// WhatsAppURL builds a wa.me link, with a prefilled message when one is given.
func WhatsAppURL(phone, message string) string {
	link := "https://wa.me/" + Digits(phone)
	if message != "" {
		link += "?text=" + encodeURIComponent(message)
	}
	return link
}

// MailtoURL builds a mailto link. Subject precedes body; both are form
// encoded.
func MailtoURL(email, subject, body string) string {
	var params []string
	if subject != "" {
		params = append(params, "subject="+formEncode(subject))
	}
	if body != "" {
		params = append(params, "body="+formEncode(body))
	}
	link := "mailto:" + email
	if len(params) > 0 {
		link += "?" + strings.Join(params, "&")
	}
	return link
}

// IsValidEmail applies the loose something@something.tld check.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateSubscription checks a newsletter signup address.
func ValidateSubscription(email string) error {
	return validation.Validate(strings.TrimSpace(email),
		validation.Required.Error(MsgEmailRequired),
		validation.Match(emailPattern).Error(MsgEmailInvalid),
	)
}

// Truncate shortens text to max runes and appends "...".
func Truncate(text string, max int) string {
	if max < 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// Initials returns up to two upper-cased initials of a space separated name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Split(name, " ") {
		first, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		out = append(out, unicode.ToUpper(first))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// FormatExperience renders a year count as "1 Year" or "N+ Years". Values
// without a leading number are returned trimmed.
func FormatExperience(years string) string {
	trimmed := strings.TrimSpace(years)
	end := 0
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(trimmed[:end])
	if end == 0 || err != nil {
		return trimmed
	}
	if n == 1 {
		return "1 Year"
	}
	return strconv.Itoa(n) + "+ Years"
}

const upperHex = "0123456789ABCDEF"

func encodeURIComponent(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isUnreserved(c) || strings.IndexByte("!'()*~", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func formEncode(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case isUnreserved(c) || c == '*':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&15])
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-' || c == '_' || c == '.'
}
