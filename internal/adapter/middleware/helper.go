package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"juvenat-admin/internal/infrastructure/cache"
	"juvenat-admin/internal/usecase/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	errMissingRequestID = errors.New("missing Ax-Request-Id")
	errInvalidRequestID = errors.New("invalid Ax-Request-Id format")
	errMissingRequestAt = errors.New("missing Ax-Request-At")
	errInvalidRequestAt = errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
	errSkewedRequestAt  = errors.New("Ax-Request-At too skewed")
)

// requestMeta is what a client sends to make a mutation replayable.
type requestMeta struct {
	ID string
	At time.Time
}

func readRequestMeta(h http.Header, now time.Time) (requestMeta, error) {
	id, err := normalizeRequestID(h.Get("Ax-Request-Id"))
	if err != nil {
		return requestMeta{}, err
	}
	at, err := parseRequestAt(h.Get("Ax-Request-At"))
	if err != nil {
		return requestMeta{}, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return requestMeta{}, errSkewedRequestAt
	}
	return requestMeta{ID: id, At: at}, nil
}

// normalizeRequestID accepts an RFC 4122 UUID or 32 hex digits, in any
// case, and returns the lowercase dashless form.
func normalizeRequestID(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", errMissingRequestID
	}
	if len(raw) == 36 {
		u, err := uuid.Parse(raw)
		if err != nil || u.Variant() != uuid.RFC4122 || u.Version() < 1 || u.Version() > 5 {
			return "", errInvalidRequestID
		}
		return strings.ReplaceAll(raw, "-", ""), nil
	}
	if len(raw) != 32 {
		return "", errInvalidRequestID
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", errInvalidRequestID
	}
	return raw, nil
}

// parseRequestAt takes epoch seconds, epoch milliseconds or RFC3339 with a
// zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errMissingRequestAt
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errInvalidRequestAt
	}
	return t.UTC(), nil
}

func bodyDigest(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

// replayStore holds one entry per route, staff member and request id, so
// two staff members never see each other's responses.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s replayStore) key(method, route string, p *session.Principal, reqID string) string {
	return cache.Key("idemp", strings.ToLower(method), route, p.StaffID, reqID)
}

// claim marks key in progress; false means another attempt holds it.
func (s replayStore) claim(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

// finish stores the response for replay, or frees the key after a server
// error so the client can retry with the same id.
func (s replayStore) finish(ctx context.Context, key string, e idempEntry) error {
	if e.Code >= http.StatusInternalServerError {
		return s.rdb.Del(ctx, key).Err()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}
