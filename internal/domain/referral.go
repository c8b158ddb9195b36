package domain

import "strings"

// ReferralCodeFor derives a person's own referral code from their email.
// The code is the lowercased local part of the address, so a referral link
// is shareable without exposing the full email.
func ReferralCodeFor(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		local = email
	}
	return strings.ToLower(strings.TrimSpace(local))
}

// NormalizeIdentity turns a scanner input into a full email address by
// appending the institutional domain when the input carries no "@".
func NormalizeIdentity(input, domain string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return s
	}
	if !strings.Contains(s, "@") {
		return s + "@" + domain
	}
	return s
}
