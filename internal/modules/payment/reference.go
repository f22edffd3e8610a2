package payment

import (
	"fmt"
	"regexp"
)

// referencePattern matches "{prefix}-{bookingID}-{paymentID}" where both ids
// are 36-char uuids. The fixed uuid length keeps the inner hyphens unambiguous.
var referencePattern = regexp.MustCompile(`^([A-Z]+)-([0-9a-fA-F-]{36})-([0-9a-fA-F-]{36})$`)

// BuildReference composes the gateway reference for a booking/payment pair.
func BuildReference(prefix, bookingID, paymentID string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, bookingID, paymentID)
}

// ParseReference splits a gateway reference back into its ids.
func ParseReference(prefix, reference string) (bookingID, paymentID string, ok bool) {
	m := referencePattern.FindStringSubmatch(reference)
	if m == nil || m[1] != prefix {
		return "", "", false
	}
	return m[2], m[3], true
}
