package testutil

import (
	"net/http"
	"time"

	id "flagdesk/pkg/domain"
	"flagdesk/pkg/requestcontext"
)

// WithUser injects a user ID into the request context, simulating what the
// auth middleware does for authenticated requests.
func WithUser(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithNow pins the request clock so handlers observe a deterministic time.
func WithNow(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
