package channel

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL turns an http(s) address into its websocket form and drops a
// trailing slash. ws(s) addresses pass through.
//
//	NormalizeURL("https://example.com/settings/") // "wss://example.com/settings"
func NormalizeURL(address string) (string, error) {
	address = strings.TrimSuffix(strings.TrimSpace(address), "/")
	switch {
	case strings.HasPrefix(address, "http:"):
		address = "ws:" + address[len("http:"):]
	case strings.HasPrefix(address, "https:"):
		address = "wss:" + address[len("https:"):]
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("channel: bad endpoint %q: %w", address, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("channel: bad endpoint %q: scheme must be ws, wss, http or https", address)
	}
	if u.Host == "" {
		return "", fmt.Errorf("channel: bad endpoint %q: missing host", address)
	}
	return u.String(), nil
}
