// Package client contains the client-side building blocks for talking to the
// event booking backend.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the API interface) used by the domain services:
//     JSON requests and multipart uploads that return a uniform Envelope.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the bearer
//     token, refreshes it shortly before it expires, and collapses concurrent
//     refresh attempts into a single call through a RefreshGuard.
//  3. A cookie jar that persists the backend's refresh cookie between runs
//     (see PersistentJar).
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Sessions and navigation
//
// When a refresh fails, or a non-refresh endpoint answers 401, the session is
// terminated: token and user are cleared, the current location is remembered
// and the Navigator is asked to show the login entry point. Termination is
// serialized and only acts when there was a session to clear, so one failure
// produces one redirect no matter how many requests observed it.
//
// # Error Handling
//
// Transport failures are *NetworkError (errors.Is ErrUnavailable), bodies that
// are not JSON are *MalformedResponseError, non-2xx statuses are *HTTPError
// (401 matches ErrUnauthorized), a missing token is *AuthRequiredError, and a
// failed refresh is ErrRefreshFailed.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; a refresh already in flight keeps
// running when one of its waiters gives up.
package client
