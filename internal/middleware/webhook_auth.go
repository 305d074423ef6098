package middleware

import (
	"bytes"
	"crypto/subtle"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/gateway"
)

// CourierWebhookAuth checks the shared-key header the courier sends with
// every tracking callback. A mismatch is rejected with 401 and the payload is
// never parsed.
func CourierWebhookAuth(apiKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				logger.Warn("Courier webhook rejected: bad api key",
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, `{"success":false,"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GatewayWebhookAuth verifies the gateway's HMAC signature over the raw
// request body. A missing header is 400, a bad signature 401. The body is
// restored for the next handler.
func GatewayWebhookAuth(webhookSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signature := r.Header.Get("X-Razorpay-Signature")
			if signature == "" {
				http.Error(w, `{"success":false,"error":"missing signature"}`, http.StatusBadRequest)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, `{"success":false,"error":"unreadable body"}`, http.StatusBadRequest)
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !gateway.VerifySignature(body, signature, webhookSecret) {
				logger.Warn("Gateway webhook rejected: signature mismatch",
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, `{"success":false,"error":"invalid signature"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
