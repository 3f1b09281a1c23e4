// Package tenant resolves and validates the business (tenant) id that
// isolates one customer's local data from another's.
//
// Two id shapes are accepted because two backend issuance schemes exist:
//
//	biz_{8+ lowercase alnum}_{6 lowercase alnum}
//	business-{lowercase alnum}
//
// Validate is applied wherever an id crosses a trust boundary: building a
// storage key (Key) or an outbound header set (Headers).
package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// HeaderName carries the tenant id on webhook requests.
const HeaderName = "X-Business-ID"

var ErrInvalidTenant = errors.New("invalid tenant id")

var idPattern = regexp.MustCompile(`^(biz_[a-z0-9]{8,}_[a-z0-9]{6}|business-[a-z0-9]+)$`)

func Validate(id string) bool {
	return idPattern.MatchString(id)
}

// Key namespaces a storage key by tenant: "{tenantID}:{name}".
func Key(tenantID, name string) (string, error) {
	if !Validate(tenantID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	return tenantID + ":" + name, nil
}

// Headers returns the JSON request headers scoped to tenantID.
func Headers(tenantID string) (http.Header, error) {
	if !Validate(tenantID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set(HeaderName, tenantID)
	return h, nil
}
