package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/cvagent/internal/models"
)

const defaultPasscodeKeyPrefix = "cvagent:passcode:"

// RedisPasscodeStore keeps migration challenges in Redis and lets key expiry
// discard stale ones.
type RedisPasscodeStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisPasscodeStore(client redis.UniversalClient, prefix string) *RedisPasscodeStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultPasscodeKeyPrefix
	}
	return &RedisPasscodeStore{client: client, prefix: prefix, now: time.Now}
}

func (store *RedisPasscodeStore) key(email string) string {
	return store.prefix + email
}

func (store *RedisPasscodeStore) Save(ctx context.Context, challenge models.PasscodeChallenge) error {
	if store.client == nil {
		return errors.New("redis client is not configured")
	}

	ttl := challenge.ExpiresAt.Sub(store.now())
	if ttl <= 0 {
		return store.Delete(ctx, challenge.Email)
	}

	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("encode passcode challenge: %w", err)
	}
	return store.client.Set(ctx, store.key(challenge.Email), payload, ttl).Err()
}

func (store *RedisPasscodeStore) Find(ctx context.Context, email string) (models.PasscodeChallenge, bool, error) {
	if store.client == nil {
		return models.PasscodeChallenge{}, false, errors.New("redis client is not configured")
	}

	payload, err := store.client.Get(ctx, store.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PasscodeChallenge{}, false, nil
	}
	if err != nil {
		return models.PasscodeChallenge{}, false, err
	}

	challenge := models.PasscodeChallenge{}
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return models.PasscodeChallenge{}, false, fmt.Errorf("decode passcode challenge: %w", err)
	}
	return challenge, true, nil
}

// maxWatchRetries bounds optimistic retries when another writer changes the
// key between WATCH and EXEC.
const maxWatchRetries = 64

var errChallengeGone = errors.New("passcode challenge is gone")

// update applies change to the stored challenge under WATCH, keeping the key's
// TTL. It returns errChallengeGone when the key does not exist.
func (store *RedisPasscodeStore) update(ctx context.Context, email string, change func(*models.PasscodeChallenge) error) (models.PasscodeChallenge, error) {
	if store.client == nil {
		return models.PasscodeChallenge{}, errors.New("redis client is not configured")
	}

	key := store.key(email)
	var updated models.PasscodeChallenge
	transaction := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return errChallengeGone
		}
		if err != nil {
			return err
		}

		challenge := models.PasscodeChallenge{}
		if err := json.Unmarshal(payload, &challenge); err != nil {
			return fmt.Errorf("decode passcode challenge: %w", err)
		}
		if err := change(&challenge); err != nil {
			return err
		}
		encoded, err := json.Marshal(challenge)
		if err != nil {
			return fmt.Errorf("encode passcode challenge: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, encoded, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			updated = challenge
		}
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := store.client.Watch(ctx, transaction, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return updated, err
	}
	return models.PasscodeChallenge{}, fmt.Errorf("update passcode challenge: %w", redis.TxFailedErr)
}

var errAttemptsExhausted = errors.New("passcode attempts exhausted")

func (store *RedisPasscodeStore) ReserveAttempt(ctx context.Context, email string, maxAttempts int) (int, bool, error) {
	updated, err := store.update(ctx, email, func(challenge *models.PasscodeChallenge) error {
		if challenge.Attempts >= maxAttempts {
			return errAttemptsExhausted
		}
		challenge.Attempts++
		return nil
	})
	if errors.Is(err, errChallengeGone) || errors.Is(err, errAttemptsExhausted) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return updated.Attempts, true, nil
}

func (store *RedisPasscodeStore) UpdateState(ctx context.Context, email string, state string, resetAttempts bool, updatedAt time.Time) error {
	_, err := store.update(ctx, email, func(challenge *models.PasscodeChallenge) error {
		challenge.State = state
		challenge.UpdatedAt = updatedAt
		if resetAttempts {
			challenge.Attempts = 0
		}
		return nil
	})
	if errors.Is(err, errChallengeGone) {
		return nil
	}
	return err
}

func (store *RedisPasscodeStore) Delete(ctx context.Context, email string) error {
	if store.client == nil {
		return errors.New("redis client is not configured")
	}
	return store.client.Del(ctx, store.key(email)).Err()
}

// PurgeExpired is a no-op: Redis expires the keys itself.
func (store *RedisPasscodeStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
