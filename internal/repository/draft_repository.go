package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

// DraftRepository stores submission drafts in Redis keyed by session id.
// Drafts are transient: they expire on their own and are deleted outright on
// a successful submit.
type DraftRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDraftRepository constructs a draft repository.
func NewDraftRepository(client *redis.Client, logger *zap.Logger) *DraftRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftRepository{client: client, logger: logger}
}

func draftKey(sessionID string) string {
	return "wizard:draft:" + sessionID
}

// Get loads the draft for a session.
func (r *DraftRepository) Get(ctx context.Context, sessionID string) (*models.GrievanceDraft, error) {
	raw, err := r.client.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get draft %s: %w", sessionID, err)
	}

	var draft models.GrievanceDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", sessionID, err)
	}
	return &draft, nil
}

// Save persists the draft with the provided TTL.
func (r *DraftRepository) Save(ctx context.Context, draft *models.GrievanceDraft, ttl time.Duration) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.SessionID, err)
	}
	if err := r.client.Set(ctx, draftKey(draft.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.SessionID, err)
	}
	return nil
}

// Delete discards the draft, if any.
func (r *DraftRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", sessionID, err)
	}
	return nil
}
