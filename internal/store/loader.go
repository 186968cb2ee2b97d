package store

import (
	"context"
	"sync"
	"time"

	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/common/metrics"
	"aid-eligibility-workers/internal/engine"
)

// Loader builds the engine from a repository and rebuilds it after the reload
// interval. When a reload fails the previous engine keeps serving.
type Loader struct {
	repo          Repository
	source        string
	questionnaire string
	interval      time.Duration
	opts          []engine.Option
	logger        logger.Logger
	now           func() time.Time

	mu       sync.RWMutex
	current  *engine.Engine
	loadedAt time.Time
}

type LoaderConfig struct {
	Source         string
	Questionnaire  string
	ReloadInterval time.Duration
}

func NewLoader(repo Repository, cfg LoaderConfig, log logger.Logger, opts ...engine.Option) *Loader {
	return &Loader{
		repo:          repo,
		source:        cfg.Source,
		questionnaire: cfg.Questionnaire,
		interval:      cfg.ReloadInterval,
		opts:          opts,
		logger:        log.WithFields(map[string]interface{}{"questionnaire": cfg.Questionnaire}),
		now:           time.Now,
	}
}

// Engine returns the current engine, loading or reloading it when due.
func (l *Loader) Engine(ctx context.Context) (*engine.Engine, error) {
	l.mu.RLock()
	if l.current != nil && !l.due() {
		e := l.current
		l.mu.RUnlock()
		return e, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil && !l.due() {
		return l.current, nil
	}
	return l.load(ctx)
}

// Reload rebuilds the engine now.
func (l *Loader) Reload(ctx context.Context) (*engine.Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Ready reports whether an engine has been built.
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current != nil
}

func (l *Loader) due() bool {
	return l.interval > 0 && l.now().Sub(l.loadedAt) >= l.interval
}

// load must be called with mu held.
func (l *Loader) load(ctx context.Context) (*engine.Engine, error) {
	e, err := l.build(ctx)
	if err != nil {
		metrics.CatalogLoads.WithLabelValues(l.source, "error").Inc()
		if l.current != nil {
			l.logger.Warn("Questionnaire reload failed, keeping previous engine", map[string]interface{}{"error": err})
			// retry on the next interval, not on every call
			l.loadedAt = l.now()
			return l.current, nil
		}
		return nil, err
	}

	metrics.CatalogLoads.WithLabelValues(l.source, "ok").Inc()
	l.current = e
	l.loadedAt = l.now()
	return e, nil
}

func (l *Loader) build(ctx context.Context) (*engine.Engine, error) {
	if whole, ok := l.repo.(questionnaireSource); ok {
		q, err := whole.LoadQuestionnaire(ctx, l.questionnaire)
		if err != nil {
			return nil, err
		}
		return engine.New(q.Questions, q.Rules, l.opts...)
	}

	questions, err := l.repo.LoadQuestions(ctx, l.questionnaire)
	if err != nil {
		return nil, err
	}
	rules, err := l.repo.LoadRules(ctx, l.questionnaire)
	if err != nil {
		return nil, err
	}
	return engine.New(questions, rules, l.opts...)
}
