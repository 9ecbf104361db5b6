package mailer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidAddress is returned by ParseAddress when the input matches
// neither a bare email address nor a "Name <email>" form.
var ErrInvalidAddress = errors.New("mailer: invalid formatted address")

// emailPattern is a syntactic sanity check only, not full RFC 5322
// validation.
const emailPattern = `[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`

var (
	emailRegex            = regexp.MustCompile(`^` + emailPattern + `$`)
	formattedAddressRegex = regexp.MustCompile(`^([^,<]+)<(` + emailPattern + `)>$`)
)

// FormatAddress combines an email address and an optional display name into
// a single address string. With an empty name the address is returned
// unchanged, otherwise the result is "Name <address>".
func FormatAddress(address, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

// ParseAddress splits a formatted address string into its email address and
// display name. A bare address like "steve@example.com" yields an empty
// name. A string like "Steve <steve@example.com>" yields both parts,
// trimmed. Anything else fails with ErrInvalidAddress.
func ParseAddress(formatted string) (address, name string, err error) {
	if emailRegex.MatchString(formatted) {
		return formatted, "", nil
	}

	match := formattedAddressRegex.FindStringSubmatch(formatted)
	if match == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAddress, formatted)
	}
	return strings.TrimSpace(match[2]), strings.TrimSpace(match[1]), nil
}
