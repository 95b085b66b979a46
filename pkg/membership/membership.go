// Package membership answers "is this user a member of that
// organisation?", remembering the answers for a while so that a pull
// request with many commits costs one API call per author.
package membership

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
)

// ErrNotCached is returned by a Cache that has no (live) entry.
var ErrNotCached = errors.New("not cached")

// Lookup reports whether login is a member of org.
type Lookup func(ctx context.Context, org, login string) (bool, error)

type Cache interface {
	// Get returns the cached answer for key, or ErrNotCached.
	Get(key string) (bool, error)
	// Set stores an answer for key, to be forgotten after ttl.
	Set(key string, member bool, ttl time.Duration) error
}

// Key is the cache key for a membership answer. GitHub logins are
// case-insensitive.
func Key(org, login string) string {
	return strings.Join([]string{
		"dcomembershipv1", // Bump the version number if the cache format changes
		strings.ToLower(org),
		strings.ToLower(login),
	}, "|")
}

// Cached wraps lookup with cache. Errors from the cache are logged
// and otherwise ignored; failed lookups are not remembered.
func Cached(lookup Lookup, cache Cache, ttl time.Duration, logger log.Logger) Lookup {
	return func(ctx context.Context, org, login string) (bool, error) {
		key := Key(org, login)
		member, err := cache.Get(key)
		switch err {
		case nil:
			cacheRequests.With(labelCache, "hit").Add(1)
			return member, nil
		case ErrNotCached:
			cacheRequests.With(labelCache, "miss").Add(1)
		default:
			cacheRequests.With(labelCache, "error").Add(1)
			logger.Log("err", err, "key", key)
		}

		member, err = lookup(ctx, org, login)
		if err != nil {
			return false, err
		}
		if err := cache.Set(key, member, ttl); err != nil {
			logger.Log("err", err, "key", key)
		}
		return member, nil
	}
}
