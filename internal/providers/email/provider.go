// Package email delivers donor-facing notifications. Delivery is
// best-effort; callers never fail a payment because a message bounced.
package email

import (
	"context"
	"strings"
)

// Notifier sends one templated message to one recipient.
type Notifier interface {
	Send(ctx context.Context, templateName, to string, data map[string]any) error
}

// BaseThankYouTemplate acknowledges a donation for collectives without a
// dedicated template.
const BaseThankYouTemplate = "thankyou"

// thankYouOverrides maps collective slug fragments to dedicated
// templates.
var thankYouOverrides = map[string]string{
	"opensource": "thankyou.opensource",
	"laprimaire": "thankyou.fr",
	"wwcode":     "thankyou.wwcode",
}

// ThankYouTemplate picks the acknowledgment template for a collective by
// simple name pattern matching.
func ThankYouTemplate(collectiveSlug string) string {
	slug := strings.ToLower(collectiveSlug)
	for fragment, template := range thankYouOverrides {
		if strings.Contains(slug, fragment) {
			return template
		}
	}
	return BaseThankYouTemplate
}
