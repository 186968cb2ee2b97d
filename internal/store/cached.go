package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"aid-eligibility-workers/internal/common/database"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/models"
)

// CachedRepository keeps a JSON copy of each questionnaire in Redis under a single
// key. A cache that is down or holds garbage is skipped, never fatal.
type CachedRepository struct {
	origin Repository
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRepository(origin Repository, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedRepository {
	return &CachedRepository{
		origin: origin,
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "questionnaire-cache"}),
	}
}

func cacheKey(questionnaire string) string {
	return fmt.Sprintf("eligibility:questionnaire:%s", questionnaire)
}

// LoadQuestionnaire returns the questions and rules of questionnaire from one cache
// entry, so both always come from the same origin read. On a miss both are loaded
// from the origin and written back together.
func (r *CachedRepository) LoadQuestionnaire(ctx context.Context, questionnaire string) (*models.Questionnaire, error) {
	key := cacheKey(questionnaire)
	var cached models.Questionnaire
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}

	questions, err := r.origin.LoadQuestions(ctx, questionnaire)
	if err != nil {
		return nil, err
	}
	rules, err := r.origin.LoadRules(ctx, questionnaire)
	if err != nil {
		return nil, err
	}
	out := &models.Questionnaire{ID: questionnaire, Questions: questions, Rules: rules}
	r.set(ctx, key, out)
	return out, nil
}

func (r *CachedRepository) LoadQuestions(ctx context.Context, questionnaire string) ([]models.QuestionRecord, error) {
	q, err := r.LoadQuestionnaire(ctx, questionnaire)
	if err != nil {
		return nil, err
	}
	return q.Questions, nil
}

func (r *CachedRepository) LoadRules(ctx context.Context, questionnaire string) ([]models.RuleRecord, error) {
	q, err := r.LoadQuestionnaire(ctx, questionnaire)
	if err != nil {
		return nil, err
	}
	return q.Rules, nil
}

// Invalidate drops the cached records of questionnaire.
func (r *CachedRepository) Invalidate(ctx context.Context, questionnaire string) error {
	return r.redis.Del(ctx, cacheKey(questionnaire))
}

func (r *CachedRepository) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := r.redis.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			r.logger.Warn("Cache read failed, using origin", map[string]interface{}{"key": key, "error": err})
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn("Cache entry is corrupt, using origin", map[string]interface{}{"key": key, "error": err})
		return false
	}
	r.logger.Debug("Cache hit", map[string]interface{}{"key": key})
	return true
}

func (r *CachedRepository) set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn("Cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
