package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const selectionTTL = time.Hour

// SelectionRepository keeps each official's bulk-selection set in Redis. The
// set only ever holds complaint ids that were pending approval at selection
// time; the queue service re-validates against the latest fetched list.
type SelectionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSelectionRepository constructs a selection repository.
func NewSelectionRepository(client *redis.Client, logger *zap.Logger) *SelectionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionRepository{client: client, logger: logger}
}

func selectionKey(userID string) string {
	return "queue:selection:" + userID
}

// Members returns the current selection for an official.
func (r *SelectionRepository) Members(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, selectionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis selection members %s: %w", userID, err)
	}
	return ids, nil
}

// Add inserts a complaint id into the selection.
func (r *SelectionRepository) Add(ctx context.Context, userID, complaintID string) error {
	key := selectionKey(userID)
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, complaintID)
	pipe.Expire(ctx, key, selectionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis selection add %s: %w", userID, err)
	}
	return nil
}

// Remove drops a complaint id from the selection.
func (r *SelectionRepository) Remove(ctx context.Context, userID, complaintID string) error {
	if err := r.client.SRem(ctx, selectionKey(userID), complaintID).Err(); err != nil {
		return fmt.Errorf("redis selection remove %s: %w", userID, err)
	}
	return nil
}

// Replace swaps the selection for the provided set of ids.
func (r *SelectionRepository) Replace(ctx context.Context, userID string, complaintIDs []string) error {
	key := selectionKey(userID)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(complaintIDs) > 0 {
		members := make([]interface{}, len(complaintIDs))
		for i, id := range complaintIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, selectionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis selection replace %s: %w", userID, err)
	}
	return nil
}

// Clear empties the selection.
func (r *SelectionRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, selectionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis selection clear %s: %w", userID, err)
	}
	return nil
}
