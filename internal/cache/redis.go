// Package cache stores orchestrator results in redis. Keys embed the
// catalog snapshot hash, so a reload never serves results computed from an
// older catalog.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const defaultTTL = 10 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Connect parses a redis URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Key builds the cache key for an intent against a catalog snapshot.
// User-scoped intents share the "rec:user:<id>:" prefix so ClearUserCache
// can drop them together.
func Key(catalogHash string, in domain.Intent) string {
	var b strings.Builder
	if user := userKey(in); user != "" {
		b.WriteString("rec:user:")
		b.WriteString(user)
	} else {
		b.WriteString("rec:query")
	}
	b.WriteString(":")
	b.WriteString(catalogHash)
	b.WriteString(":")
	b.WriteString(string(in.Type))
	if in.Query != "" {
		b.WriteString(":q:")
		b.WriteString(strconv.FormatUint(xxhash.Sum64String(strings.ToLower(in.Query)), 16))
	}
	if in.Model != "" {
		b.WriteString(":model:")
		b.WriteString(in.Model)
	}
	b.WriteString(":limit:")
	b.WriteString(strconv.Itoa(in.Limit))
	return b.String()
}

func userKey(in domain.Intent) string {
	switch {
	case in.UserID != "":
		return strings.ReplaceAll(in.UserID, ":", "_")
	case in.Email != "":
		return strings.ReplaceAll(strings.ToLower(in.Email), ":", "_")
	}
	return ""
}

// escapeGlob neutralizes characters that SCAN MATCH treats as patterns and
// applies the same ":" substitution as userKey.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`, ":", "_")
	return r.Replace(s)
}

func (c *Cache) Get(ctx context.Context, key string) (*domain.Result, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached result %s: %w", key, err)
	}

	var res domain.Result
	if err := json.Unmarshal(val, &res); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached result %s: %w", key, err)
	}
	return &res, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, res *domain.Result) error {
	val, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached result %s: %w", key, err)
	}
	return nil
}

// ClearUserCache drops every cached result for a user id or email. Used
// when interactions or preferences change.
func (c *Cache) ClearUserCache(ctx context.Context, user string) error {
	for _, pattern := range userPatterns(user) {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("cache scan %s: %w", pattern, err)
		}
	}
	return nil
}

// userPatterns covers both key forms: ids are case-sensitive, emails are
// stored lowercased.
func userPatterns(user string) []string {
	exact := fmt.Sprintf("rec:user:%s:*", escapeGlob(user))
	lower := fmt.Sprintf("rec:user:%s:*", escapeGlob(strings.ToLower(user)))
	if exact == lower {
		return []string{exact}
	}
	return []string{exact, lower}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
