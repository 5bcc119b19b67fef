package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// runLockTTL bounds how long a crashed run can hold its lock. A normal run
// releases explicitly when its stream closes.
const runLockTTL = 10 * time.Minute

// Locks serializes synthesis runs per sermon: one pipeline run executes per
// sermon at a time, so two browser tabs can't generate the same audio
// concurrently.
type Locks struct {
	client *redis.Client
}

func New(redisURL string) (*Locks, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Locks{client: client}, nil
}

func (l *Locks) Close() error {
	return l.client.Close()
}

func runKey(sermonID uuid.UUID) string {
	return "audio_run:" + sermonID.String()
}

// AcquireRun claims the run lock for a sermon. Returns false when another
// run already holds it.
func (l *Locks) AcquireRun(ctx context.Context, sermonID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, runKey(sermonID), time.Now().Format(time.RFC3339), runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// ReleaseRun frees the run lock when the stream closes.
func (l *Locks) ReleaseRun(ctx context.Context, sermonID uuid.UUID) error {
	return l.client.Del(ctx, runKey(sermonID)).Err()
}
