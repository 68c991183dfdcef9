package validators

import (
	"net"
	"net/mail"
	"strings"
)

// IsEmailSyntaxValid is the cheap check used for public booking clients,
// where we only care that the address parses.
func IsEmailSyntaxValid(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// IsEmailDomainValid additionally requires the domain to resolve. Used at
// staff/owner registration, where a typo locks the account out.
func IsEmailDomainValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	at := strings.LastIndex(addr.Address, "@")
	domain := strings.ToLower(addr.Address[at+1:])

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
