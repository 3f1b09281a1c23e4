// Package client talks to the two remote systems the MediaBot client
// depends on.
//
// # Overview
//
//  1. The backend auth API (see the Client interface and HTTPClient):
//     login, logout, token verification, OTP login and onboarding, all as
//     JSON POSTs with an optional "Authorization: Bearer" header.
//  2. The chat automation webhook (see Webhook and WebhookClient): one POST
//     per message, scoped by the X-Business-ID header.
//
// Both are consumed as opaque request/response contracts. Nothing is
// retried, and no timeout is set beyond what the supplied *http.Client has.
//
// # Error Handling
//
// Transport failures and 5xx answers wrap ErrUnavailable; unparsable bodies
// wrap ErrBadResponse; a well-formed {"success": false} answer is returned
// as *APIError carrying the backend's text, which also matches
// ErrUnauthorized for 401/403 via errors.Is.
package client
