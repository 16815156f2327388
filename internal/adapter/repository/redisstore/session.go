// Package redisstore keeps per-session state in redis: the owning staff
// member, the idle-lock marker and the shell navigation state.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/infrastructure/cache"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = shell.ErrSessionNotFound

type SessionStore struct{ rdb *redis.Client }

func NewSessionStore(rdb *redis.Client) *SessionStore { return &SessionStore{rdb: rdb} }

func sessionKey(sid string) string { return cache.Key("session", sid) }
func idleKey(sid string) string    { return cache.Key("idle", sid) }
func shellKey(sid string) string   { return cache.Key("shell", sid) }

// Open registers a session for staffID. The session and its shell state
// live for ttl; the idle marker lives for idle and is refreshed by Touch.
func (s *SessionStore) Open(ctx context.Context, sid, staffID string, st shell.State, ttl, idle time.Duration) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(sid), staffID, ttl)
		p.Set(ctx, shellKey(sid), payload, ttl)
		p.Set(ctx, idleKey(sid), "1", idle)
		return nil
	})
	return err
}

func (s *SessionStore) StaffID(ctx context.Context, sid string) (string, error) {
	v, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return v, err
}

// Touch pushes the idle deadline back. It reports false once the marker
// has expired or was removed by Lock.
func (s *SessionStore) Touch(ctx context.Context, sid string, idle time.Duration) (bool, error) {
	return s.rdb.Expire(ctx, idleKey(sid), idle).Result()
}

// IdleRemaining is the time left before the session locks, 0 when locked.
func (s *SessionStore) IdleRemaining(ctx context.Context, sid string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, idleKey(sid)).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (s *SessionStore) Lock(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, idleKey(sid)).Err()
}

func (s *SessionStore) Unlock(ctx context.Context, sid string, idle time.Duration) error {
	return s.rdb.Set(ctx, idleKey(sid), "1", idle).Err()
}

func (s *SessionStore) LoadState(ctx context.Context, sid string) (shell.State, error) {
	var st shell.State
	b, err := s.rdb.Get(ctx, shellKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return st, ErrSessionNotFound
	}
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(b, &st)
	return st, err
}

// SaveState overwrites the shell state and keeps the session's expiry.
func (s *SessionStore) SaveState(ctx context.Context, sid string, st shell.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetXX(ctx, shellKey(sid), payload, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Close removes every key of the session.
func (s *SessionStore) Close(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid), idleKey(sid), shellKey(sid)).Err()
}
