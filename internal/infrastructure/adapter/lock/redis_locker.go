package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
)

const keyPrefix = "topup-ledger:confirm:"

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client is the subset of the redis client the locker needs
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// Config holds the redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a client and verifies the connection
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisLocker guards confirmations across instances with SET NX PX
type RedisLocker struct {
	client Client
	logger core.Logger
}

var _ persistence.ConfirmationLocker = (*RedisLocker)(nil)

// NewRedisLocker creates a new RedisLocker
func NewRedisLocker(client Client, logger core.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger}
}

// Acquire takes the lock of transactionID for ttl
func (l *RedisLocker) Acquire(ctx context.Context, transactionID string, ttl time.Duration) (persistence.ReleaseFunc, bool, error) {
	key := keyPrefix + transactionID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		l.logger.Error("Failed to acquire confirmation lock", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
		return nil, false, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release confirmation lock %s: %w", transactionID, err)
		}
		return nil
	}
	return release, true, nil
}
