package provider

import (
	"errors"
	"net/http"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

// StatusForHTTP maps an upstream HTTP status to a result status: credential
// rejections are auth failures, everything else non-2xx is a network failure.
func StatusForHTTP(code int) Status {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return StatusAuthFailed
	default:
		return StatusNetworkFailed
	}
}

// Classify maps an adapter-internal error onto the result status taxonomy:
// session failures are auth_failed, transport faults and upstream rejections
// are network_failed (or auth_failed for 401/403), and anything left is a
// response-shape problem, hence parse_failed.
func Classify(err error) Status {
	var ae *AuthError
	if errors.As(err, &ae) {
		return StatusAuthFailed
	}
	if errors.Is(err, httpx.ErrTransport) {
		return StatusNetworkFailed
	}
	if code := httpx.StatusCode(err); code != 0 {
		return StatusForHTTP(code)
	}
	return StatusParseFailed
}

// Failed builds a result carrying zero metrics and an error detail.
func Failed(providerName string, status Status, err error) *Result {
	return &Result{
		Provider:    providerName,
		Status:      status,
		ErrorDetail: err.Error(),
	}
}
