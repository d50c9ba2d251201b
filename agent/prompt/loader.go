package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/checkout.txt
var checkoutRaw string

// Checkout returns the checkout agent's system prompt template. The text is
// an FString template; the context builder fills the session placeholders.
func Checkout() string {
	return strings.TrimSpace(checkoutRaw)
}
