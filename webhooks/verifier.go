package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/fleet-alerts/core"
)

const (
	// MotiveProviderID identifies the fleet-management provider on inbound
	// requests and routes.
	MotiveProviderID = "motive"

	// MotiveSignatureHeader carries the hex-encoded HMAC-SHA1 of the raw
	// request body. SHA-1 is provider mandated.
	MotiveSignatureHeader = "X-KT-Webhook-Signature"
)

type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

// ProviderWebhookTemplate bundles the verification pieces for one provider.
type ProviderWebhookTemplate struct {
	ProviderID string
	Verifier   Verifier
}

// HeaderHMACVerifier validates a keyed hash of the raw body against a
// hex-encoded signature header. It must see the body exactly as received:
// re-serializing parsed JSON breaks the hash match.
type HeaderHMACVerifier struct {
	Header string
	Secret string
}

func (v HeaderHMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	header := strings.TrimSpace(headerValue(req.Headers, v.Header))
	if header == "" {
		return missingSignatureError(v.Header)
	}
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return authError("webhooks: signature secret is required", map[string]any{
			"reason": "missing_secret",
		})
	}

	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write(req.Body)
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(header)
	if err != nil {
		return invalidSignatureError(v.Header)
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return invalidSignatureError(v.Header)
	}
	return nil
}

// Sign computes the hex signature for a body. Exposed for tests and local
// delivery tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func NewMotiveWebhookTemplate(secret string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID: MotiveProviderID,
		Verifier: HeaderHMACVerifier{
			Header: MotiveSignatureHeader,
			Secret: strings.TrimSpace(secret),
		},
	}
}

func missingSignatureError(header string) error {
	return authError("webhooks: "+strings.TrimSpace(header)+" signature header is required", map[string]any{
		"reason": "missing_signature",
		"header": strings.TrimSpace(header),
	})
}

func invalidSignatureError(header string) error {
	return authError("webhooks: signature verification failed", map[string]any{
		"reason": "invalid_signature",
		"header": strings.TrimSpace(header),
	})
}

func authError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusForbidden).
		WithTextCode(core.ErrorAuthFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
