package services

import (
	"context"
	"fmt"
	"time"

	"streaming-api/internal/config"
	"streaming-api/internal/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PlaybackService issues short-lived opaque playback tokens. A token is the
// proof handed to the media delivery layer that an entitlement check already
// passed; it expires on its own and is never a second authorization source.
type PlaybackService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlaybackService creates a playback service over the shared Redis client.
func NewPlaybackService() *PlaybackService {
	return &PlaybackService{
		client: database.GetRedis(),
		ttl:    time.Duration(config.AppConfig.PlaybackTokenTTLMinutes) * time.Minute,
	}
}

// IssueToken mints a playback token for the user/video pair.
func (s *PlaybackService) IssueToken(ctx context.Context, userID, videoID uint) (string, error) {
	token := uuid.NewString()
	key := fmt.Sprintf("playback_token:%s", token)

	data := map[string]interface{}{
		"user_id":   userID,
		"video_id":  videoID,
		"issued_at": time.Now().Unix(),
	}

	if err := s.client.HSet(ctx, key, data).Err(); err != nil {
		return "", fmt.Errorf("store playback token: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("expire playback token: %w", err)
	}

	return token, nil
}

// TTL reports the configured token lifetime.
func (s *PlaybackService) TTL() time.Duration {
	return s.ttl
}
