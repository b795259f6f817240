package sanitize

import "strings"

const maxStringLen = 500

// String trims whitespace, strips angle brackets and caps the length at 500 runes.
func String(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
	if runes := []rune(s); len(runes) > maxStringLen {
		return string(runes[:maxStringLen])
	}
	return s
}

// Email lowercases and trims an email address. All storage and lookups key on
// the normalized form.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Phone keeps only digits and common phone punctuation, capped at 20 bytes.
func Phone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '(' || r == ')' || r == ' ':
		default:
			continue
		}
		b.WriteRune(r)
		if b.Len() >= 20 {
			break
		}
	}
	return b.String()
}
