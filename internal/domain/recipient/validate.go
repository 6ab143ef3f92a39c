// internal/domain/recipient/validate.go
package recipient

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Normalize trims and lower-cases a raw address and rejects malformed ones:
// empty, missing @, adjacent dots, leading/trailing dot, or a domain part
// that cannot be IDNA-encoded. Malformed addresses never reach the
// dispatcher.
func Normalize(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("empty address")
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("missing or misplaced @ in %q", email)
	}
	if strings.Contains(email, "..") {
		return "", fmt.Errorf("adjacent dots in %q", email)
	}
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return "", fmt.Errorf("leading or trailing dot in %q", email)
	}
	if _, err := idna.ToASCII(email[at+1:]); err != nil {
		return "", fmt.Errorf("domain of %q is not IDNA-encodable: %w", email, err)
	}
	return email, nil
}
