package payfast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(url string) *GatewayValidator {
	return &GatewayValidator{
		client:      &http.Client{Timeout: 500 * time.Millisecond},
		validateURL: url,
	}
}

func TestGatewayValidator(t *testing.T) {
	params := map[string]string{
		"m_payment_id": "ref-1",
		"amount_gross": "25.00",
		"signature":    "aabbcc",
	}

	tests := []struct {
		name     string
		status   int
		body     string
		expected bool
	}{
		{name: "valid response", status: http.StatusOK, body: "VALID", expected: true},
		{name: "valid with trailing newline", status: http.StatusOK, body: "VALID\n", expected: true},
		{name: "lowercase valid", status: http.StatusOK, body: "valid", expected: true},
		{name: "invalid response", status: http.StatusOK, body: "INVALID", expected: false},
		{name: "empty body", status: http.StatusOK, body: "", expected: false},
		{name: "server error", status: http.StatusInternalServerError, body: "VALID", expected: false},
		{name: "redirect-ish status", status: http.StatusFound, body: "VALID", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				// The signature must not be echoed back to the gateway.
				assert.NotContains(t, string(body), "signature=")
				assert.Contains(t, string(body), "m_payment_id=ref-1")

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := newTestValidator(srv.URL)
			assert.Equal(t, tt.expected, v.Validate(context.Background(), params))
		})
	}
}

func TestGatewayValidatorFailsClosed(t *testing.T) {
	t.Run("unreachable gateway", func(t *testing.T) {
		v := newTestValidator("http://127.0.0.1:1/validate")
		assert.False(t, v.Validate(context.Background(), map[string]string{"a": "1"}))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		v := newTestValidator(srv.URL)
		assert.False(t, v.Validate(context.Background(), map[string]string{"a": "1"}))
	})

	t.Run("empty payload", func(t *testing.T) {
		v := newTestValidator("http://unused.invalid")
		assert.False(t, v.Validate(context.Background(), map[string]string{"signature": "only"}))
	})
}

func TestProcessAndValidateURLs(t *testing.T) {
	assert.Equal(t, ProcessURLLive, ProcessURL(true))
	assert.Equal(t, ProcessURLSandbox, ProcessURL(false))
	assert.Equal(t, ValidateURLLive, ValidateURL(true))
	assert.Equal(t, ValidateURLSandbox, ValidateURL(false))
}
