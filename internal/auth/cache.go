package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "flagdesk/internal/platform/redis"
	id "flagdesk/pkg/domain"
)

// principalTTL keeps cached principals short-lived so admin/company changes
// take effect quickly.
const principalTTL = 30 * time.Second

// CachedResolver is a Redis read-through layer over another resolver.
// Cache failures degrade to direct resolution, never to request failure.
type CachedResolver struct {
	next   PrincipalResolver
	client *platformredis.Client
	logger *slog.Logger
}

// NewCachedResolver wraps next with a Redis cache. A nil client returns next
// unchanged so callers need no conditional wiring.
func NewCachedResolver(next PrincipalResolver, client *platformredis.Client, logger *slog.Logger) PrincipalResolver {
	if client == nil {
		return next
	}
	return &CachedResolver{next: next, client: client, logger: logger}
}

func cacheKey(userID id.UserID) string {
	return "principal:" + userID.String()
}

// Resolve implements PrincipalResolver.
func (r *CachedResolver) Resolve(ctx context.Context, userID id.UserID) (*Principal, error) {
	raw, err := r.client.Get(ctx, cacheKey(userID)).Result()
	if err == nil {
		var principal Principal
		if unmarshalErr := json.Unmarshal([]byte(raw), &principal); unmarshalErr == nil {
			return &principal, nil
		}
		// Corrupt cache entries fall through to the source of truth.
	} else if !errors.Is(err, goredis.Nil) {
		r.logger.WarnContext(ctx, "principal cache read failed", "error", err.Error())
	}

	principal, err := r.next.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if encoded, marshalErr := json.Marshal(principal); marshalErr == nil {
		if setErr := r.client.Set(ctx, cacheKey(userID), encoded, principalTTL).Err(); setErr != nil {
			r.logger.WarnContext(ctx, "principal cache write failed", "error", setErr.Error())
		}
	}
	return principal, nil
}
