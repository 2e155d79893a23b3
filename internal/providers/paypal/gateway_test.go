package paypal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalLink(t *testing.T) {
	links := []Link{
		{Href: "https://paypal.test/execute", Rel: "execute", Method: "POST"},
		{Href: "https://paypal.test/approve", Rel: "approval_url", Method: "REDIRECT"},
	}
	assert.Equal(t, "https://paypal.test/approve", ApprovalLink(links))
	assert.Empty(t, ApprovalLink(nil))
	assert.Empty(t, ApprovalLink(links[:1]))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10.00", formatAmount(1000))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "123.45", formatAmount(12345))
}
