package patchstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client wraps a Redis client with instance-scoped patch operations.
// Every key the client touches is namespaced by its instance name.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a patch store client for the given instance.
// The caller must call Close() when done.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks that Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// InstanceName returns the namespace this client writes under.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Save stores a record, indexes it by creation time and publishes it on the
// patch events channel. A record without an ID or timestamp gets fresh ones.
func (c *Client) Save(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAtMs == 0 {
		r.CreatedAtMs = time.Now().UnixMilli()
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	hash, err := RecordToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, PatchKey(c.instanceName, r.ID), hash)
	pipe.ZAdd(ctx, PatchIndexKey(c.instanceName), redis.Z{
		Score:  float64(r.CreatedAtMs),
		Member: r.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write record to Redis: %w", err)
	}

	event, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record for event: %w", err)
	}
	if err := c.rdb.Publish(ctx, PatchEventsChannel(c.instanceName), event).Err(); err != nil {
		return fmt.Errorf("failed to publish patch event: %w", err)
	}

	return nil
}

// Get retrieves a record by its full ID.
// Returns redis.Nil if the record doesn't exist; check with IsNotFound.
func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	hash, err := c.rdb.HGetAll(ctx, PatchKey(c.instanceName, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get record from Redis: %w", err)
	}

	if len(hash) == 0 {
		return nil, redis.Nil
	}

	r, err := HashToRecord(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize record: %w", err)
	}

	return r, nil
}

// Exists reports whether a record with the given ID is stored.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	n, err := c.rdb.Exists(ctx, PatchKey(c.instanceName, id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return n > 0, nil
}

// IDs returns the stored record IDs, oldest first.
func (c *Client) IDs(ctx context.Context) ([]string, error) {
	ids, err := c.rdb.ZRange(ctx, PatchIndexKey(c.instanceName), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read patch index: %w", err)
	}
	return ids, nil
}

// List returns the stored records matching criteria, oldest first. A nil
// criteria lists everything. Index entries whose record has disappeared are
// skipped.
func (c *Client) List(ctx context.Context, criteria *Criteria) ([]*Record, error) {
	lo, hi := criteria.scoreRange()
	ids, err := c.rdb.ZRangeByScore(ctx, PatchIndexKey(c.instanceName), &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read patch index: %w", err)
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		r, err := c.Get(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if criteria.Matches(r) {
			records = append(records, r)
		}
	}
	return records, nil
}

// Delete removes a record and its index entry.
func (c *Client) Delete(ctx context.Context, id string) error {
	pipe := c.rdb.TxPipeline()
	del := pipe.Del(ctx, PatchKey(c.instanceName, id))
	pipe.ZRem(ctx, PatchIndexKey(c.instanceName), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if del.Val() == 0 {
		return redis.Nil
	}
	return nil
}

// IsNotFound checks if an error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
