package acftype

import "strings"

// SanitizeICAO normalizes a reported type designator: surrounding padding is
// dropped, letters are upper-cased and anything that is not 2 to 4
// alphanumerics starting with a letter yields "".
func SanitizeICAO(s string) string {
	s = strings.ToUpper(strings.TrimSpace(trimField(s)))
	if len(s) < 2 || len(s) > 4 {
		return ""
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return ""
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return s
}
