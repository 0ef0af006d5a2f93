// Package redisstore は Redis を利用したセッションストアです。
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

const keyPrefix = "directory:session:"

// Store は session.Store の Redis 実装です。
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore は Store を生成します。
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create は新しいトークンを払い出し、Identity を TTL 付きで保存します。
func (s *Store) Create(ctx context.Context, identity session.Identity) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("redisstore: generate token: %w", err)
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("redisstore: encode identity: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(token.String()), payload, s.ttl).Err(); err != nil {
		return "", failure.Wrap(failure.ErrConnectionFailure, fmt.Errorf("redisstore: set: %w", err))
	}

	return token.String(), nil
}

// Lookup はトークンに対応する Identity を返します。
func (s *Store) Lookup(ctx context.Context, token string) (session.Identity, error) {
	payload, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Identity{}, session.ErrSessionNotFound
		}
		return session.Identity{}, failure.Wrap(failure.ErrConnectionFailure, fmt.Errorf("redisstore: get: %w", err))
	}

	var identity session.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return session.Identity{}, fmt.Errorf("redisstore: decode identity: %w", err)
	}
	return identity, nil
}

// Delete はトークンを破棄します。存在しないトークンはエラーにしません。
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return failure.Wrap(failure.ErrConnectionFailure, fmt.Errorf("redisstore: del: %w", err))
	}
	return nil
}

func redisKey(token string) string {
	return keyPrefix + token
}
