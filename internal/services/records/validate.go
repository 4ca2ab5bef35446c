package records

import (
	"regexp"
	"unicode/utf8"
)

// MaxUsernameLength is the longest accepted username, in characters
const MaxUsernameLength = 32

var (
	forbiddenUsernameChars = regexp.MustCompile(`[ .$#\[\]/\x00-\x1F\x7F]`)
	emailPattern           = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")
)

// UsernameAcceptable is the server-side username rule: non-empty and at
// most MaxUsernameLength characters
func UsernameAcceptable(username string) bool {
	return username != "" && utf8.RuneCountInString(username) <= MaxUsernameLength
}

// ValidUsername is the full client-side rule. On top of UsernameAcceptable it
// rejects spaces, the characters . $ # [ ] / and control characters.
func ValidUsername(username string) bool {
	return UsernameAcceptable(username) && !forbiddenUsernameChars.MatchString(username)
}

// ValidEmail reports whether email looks like a deliverable address
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
