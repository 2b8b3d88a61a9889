package payfast

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// validateTimeout bounds the confirmation call. A gateway that does not
// answer in time is treated the same as one that answered INVALID.
const validateTimeout = 10 * time.Second

// RemoteValidator corroborates a notification with the gateway itself.
// The reconciliation engine depends on this interface so tests can stub
// the gateway's answer.
type RemoteValidator interface {
	Validate(ctx context.Context, params map[string]string) bool
}

// GatewayValidator posts the received notification back to PayFast's
// validate endpoint and checks for the VALID response token.
type GatewayValidator struct {
	client      *http.Client
	validateURL string
}

// NewGatewayValidator creates a validator for the given mode.
func NewGatewayValidator(live bool) *GatewayValidator {
	return &GatewayValidator{
		client:      &http.Client{Timeout: validateTimeout},
		validateURL: ValidateURL(live),
	}
}

// Validate re-encodes the payload (minus its signature, no passphrase) as the
// form body and submits it to the gateway. True only on a 2xx response whose
// body carries the VALID token. Every failure path is false; network errors
// are logged, never propagated.
func (v *GatewayValidator) Validate(ctx context.Context, params map[string]string) bool {
	unsigned := make(map[string]string, len(params))
	for k, val := range params {
		if k == FieldSignature {
			continue
		}
		unsigned[k] = val
	}

	body := SignatureString(unsigned, "")
	if body == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.validateURL, strings.NewReader(body))
	if err != nil {
		log.Printf("[payfast] validate request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		log.Printf("[payfast] validate call failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[payfast] validate returned status %d", resp.StatusCode)
		return false
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		log.Printf("[payfast] validate response read failed: %v", err)
		return false
	}
	return isValidResponse(string(respBody))
}

// isValidResponse checks for the VALID token. The negative answer is
// "INVALID", so the first whitespace-delimited token must match exactly
// (case-insensitively); a substring search would accept both.
func isValidResponse(body string) bool {
	fields := strings.Fields(body)
	return len(fields) > 0 && strings.EqualFold(fields[0], validResponseToken)
}
