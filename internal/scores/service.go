package scores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/protocol"
)

// Service validates score writes and keeps subscribers up to date.
type Service struct {
	store   Store
	hub     *Hub
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, hub *Hub, metrics *Metrics, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		hub:     hub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Submit stores a finished game. The date defaults to now.
func (s *Service) Submit(ctx context.Context, req protocol.CreateScoreRequest) (protocol.ScoreRecord, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return protocol.ScoreRecord{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if req.Score == nil || req.Level == nil {
		return protocol.ScoreRecord{}, fmt.Errorf("%w: score and level are required", ErrInvalid)
	}
	if *req.Score < 0 || *req.Level < 1 {
		return protocol.ScoreRecord{}, fmt.Errorf("%w: score or level out of range", ErrInvalid)
	}

	date := s.now().UTC()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}

	rec, err := s.store.Insert(ctx, protocol.ScoreRecord{
		Name:  name,
		Score: *req.Score,
		Level: *req.Level,
		Date:  date,
	})
	if err != nil {
		return protocol.ScoreRecord{}, fmt.Errorf("insert score: %w", err)
	}
	s.metrics.submissions.Inc()
	s.log.Info("score saved",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.Int("score", rec.Score),
		zap.Int("level", rec.Level))

	s.publish(ctx)
	return rec, nil
}

// List returns every score, highest first.
func (s *Service) List(ctx context.Context) ([]protocol.ScoreRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	if recs == nil {
		recs = []protocol.ScoreRecord{}
	}
	return recs, nil
}

// Rename corrects the name on a stored score.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if err := s.store.Rename(ctx, id, name); err != nil {
		return fmt.Errorf("rename %s: %w", id, err)
	}
	s.metrics.renames.Inc()
	s.log.Info("score renamed", zap.String("id", id), zap.String("name", name))

	s.publish(ctx)
	return nil
}

// Leaderboard wraps the current standings in a websocket envelope.
func (s *Service) Leaderboard(ctx context.Context) (protocol.Envelope, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.Envelope{
		Type:    protocol.MsgLeaderboard,
		Payload: protocol.LeaderboardPayload{Scores: recs},
	}, nil
}

func (s *Service) publish(ctx context.Context) {
	env, err := s.Leaderboard(ctx)
	if err != nil {
		s.log.Warn("leaderboard broadcast skipped", zap.Error(err))
		return
	}
	s.hub.Broadcast(env)
}
