package stagingRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courtside/models"
	"courtside/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// processedTTL bounds how long a settled checkout session is remembered.
const processedTTL = 30 * 24 * time.Hour

// settledValue marks a processed-session key whose payment was turned into
// bookings or credits. Any other value is a lease token held by a worker.
const settledValue = "settled"

// StagingRepository holds checkout state between the redirect and the return.
type StagingRepository interface {
	StagePending(ctx context.Context, pending models.PendingCheckout, ttl time.Duration) error
	// LoadPending returns nil without error when nothing is staged for the session.
	LoadPending(ctx context.Context, sessionID string) (*models.PendingCheckout, error)
	ClearPending(ctx context.Context, sessionID string) error

	SetMarker(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	// GetMarker returns "" when the user has no pending session.
	GetMarker(ctx context.Context, userID string) (string, error)
	// ClearMarker removes the marker only if it still points at sessionID.
	ClearMarker(ctx context.Context, userID, sessionID string) error

	// ClaimSession takes a lease on sessionID for the given duration. It returns the
	// lease token and false when another caller holds a lease or the session is settled.
	ClaimSession(ctx context.Context, sessionID string, lease time.Duration) (string, bool, error)
	// SettleSession marks sessionID as processed for good.
	SettleSession(ctx context.Context, sessionID string) error
	SessionSettled(ctx context.Context, sessionID string) (bool, error)
	// ReleaseSession drops the lease only if it is still held with token.
	ReleaseSession(ctx context.Context, sessionID, token string) error
}

type RedisStagingRepo struct {
	client *redis.Client
}

func NewRedisStagingRepo(client *redis.Client) *RedisStagingRepo {
	return &RedisStagingRepo{client: client}
}

// compareAndDelete deletes KEYS[1] only when it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func pendingKey(sessionID string) string   { return utils.PendingBookingPrefix + sessionID }
func markerKey(userID string) string       { return utils.SessionMarkerPrefix + userID }
func processedKey(sessionID string) string { return utils.ProcessedSessionPrefix + sessionID }

func (r *RedisStagingRepo) StagePending(ctx context.Context, pending models.PendingCheckout, ttl time.Duration) error {
	b, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending checkout: %w", err)
	}
	if err := r.client.Set(ctx, pendingKey(pending.SessionID), b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage pending checkout %s: %w", pending.SessionID, err)
	}
	return nil
}

func (r *RedisStagingRepo) LoadPending(ctx context.Context, sessionID string) (*models.PendingCheckout, error) {
	data, err := r.client.Get(ctx, pendingKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending checkout %s: %w", sessionID, err)
	}
	var pending models.PendingCheckout
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("corrupt pending checkout %s: %w", sessionID, err)
	}
	return &pending, nil
}

func (r *RedisStagingRepo) ClearPending(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, pendingKey(sessionID)).Err()
}

func (r *RedisStagingRepo) SetMarker(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	return r.client.Set(ctx, markerKey(userID), sessionID, ttl).Err()
}

func (r *RedisStagingRepo) GetMarker(ctx context.Context, userID string) (string, error) {
	sid, err := r.client.Get(ctx, markerKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sid, err
}

func (r *RedisStagingRepo) ClearMarker(ctx context.Context, userID, sessionID string) error {
	return compareAndDelete.Run(ctx, r.client, []string{markerKey(userID)}, sessionID).Err()
}

func (r *RedisStagingRepo) ClaimSession(ctx context.Context, sessionID string, lease time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, processedKey(sessionID), token, lease).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to claim session %s: %w", sessionID, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisStagingRepo) SettleSession(ctx context.Context, sessionID string) error {
	if err := r.client.Set(ctx, processedKey(sessionID), settledValue, processedTTL).Err(); err != nil {
		return fmt.Errorf("failed to settle session %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisStagingRepo) SessionSettled(ctx context.Context, sessionID string) (bool, error) {
	v, err := r.client.Get(ctx, processedKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	return v == settledValue, nil
}

func (r *RedisStagingRepo) ReleaseSession(ctx context.Context, sessionID, token string) error {
	return compareAndDelete.Run(ctx, r.client, []string{processedKey(sessionID)}, token).Err()
}
