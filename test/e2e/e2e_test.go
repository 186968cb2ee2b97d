// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/camunda"
	"aid-eligibility-workers/internal/common/config"
	"aid-eligibility-workers/internal/common/database"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/engine/enginetest"
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/models"
	"aid-eligibility-workers/internal/store"

	ae "aid-eligibility-workers/internal/workers/eligibility/analyze-eligibility"
	va "aid-eligibility-workers/internal/workers/eligibility/validate-answers"
	cec "aid-eligibility-workers/internal/workers/interview/check-early-completion"
	prevq "aid-eligibility-workers/internal/workers/interview/previous-question"
	si "aid-eligibility-workers/internal/workers/interview/start-interview"
	sa "aid-eligibility-workers/internal/workers/interview/submit-answer"
)

const questionnaireID = "e2e"

// requireServices skips unless E2E=1. The services are expected on localhost:
// PostgreSQL 5432, Redis 6379 and a Zeebe gateway on 26500.
func requireServices(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("E2E") != "1" {
		t.Skip("set E2E=1 to run against local PostgreSQL, Redis and Zeebe")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	return cfg
}

func TestFullE2E(t *testing.T) {
	cfg := requireServices(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	// 1. Connectivity
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err, "Zeebe client creation failed")
	defer zeebe.Close()
	assert.NoError(t, zeebe.HealthCheck(ctx), "Zeebe topology request failed")

	// 2. Questionnaire tables
	q, err := store.ReadQuestionnaire("../../configs/questionnaire.yaml")
	require.NoError(t, err)
	seedQuestionnaire(t, pg.GetDB(), q)

	// 3. Engine through the cached postgres store
	cached := store.NewCachedRepository(store.NewPostgresRepository(pg.GetDB()), rdb, time.Minute, log)
	require.NoError(t, cached.Invalidate(ctx, questionnaireID))
	loader := store.NewLoader(cached, store.LoaderConfig{
		Source:        config.CatalogSourcePostgres,
		Questionnaire: questionnaireID,
	}, log, engine.OptionsFromConfig(cfg.Engine, log)...)

	e, err := loader.Engine(ctx)
	require.NoError(t, err)
	assert.Empty(t, e.Lint())
	assert.Len(t, e.Catalog().Questions(), len(q.Questions))

	// 4. Worker chain
	testInterview(t, ctx, loader, log)
}

func seedQuestionnaire(t *testing.T, db *sql.DB, q *models.Questionnaire) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			questionnaire_id  TEXT NOT NULL,
			id                TEXT NOT NULL,
			sort_order        INT NOT NULL,
			question_text     TEXT NOT NULL,
			answer_key        TEXT NOT NULL,
			answer_type       TEXT NOT NULL,
			options           JSONB,
			branch_map        JSONB,
			display_condition TEXT,
			PRIMARY KEY (questionnaire_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS conclusions (
			questionnaire_id TEXT NOT NULL,
			id               TEXT NOT NULL,
			sort_order       INT NOT NULL,
			title            TEXT NOT NULL,
			condition        TEXT NOT NULL,
			category         TEXT NOT NULL,
			message          TEXT NOT NULL,
			form_url         TEXT,
			info_url         TEXT,
			action_label     TEXT,
			PRIMARY KEY (questionnaire_id, id)
		)`,
		`DELETE FROM questions WHERE questionnaire_id = '` + questionnaireID + `'`,
		`DELETE FROM conclusions WHERE questionnaire_id = '` + questionnaireID + `'`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}

	for _, rec := range q.Questions {
		_, err := db.Exec(`INSERT INTO questions VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`,
			questionnaireID, rec.ID, rec.Order, rec.Text, rec.AnswerKey, rec.AnswerType,
			jsonb(t, rec.Options), jsonb(t, rec.BranchMap), rec.DisplayCondition)
		require.NoError(t, err, "insert question %s", rec.ID)
	}
	for i, rec := range q.Rules {
		_, err := db.Exec(`INSERT INTO conclusions VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))`,
			questionnaireID, rec.ID, i+1, rec.Title, rec.Condition, rec.Category, rec.Message,
			rec.FormURL, rec.InfoURL, rec.ActionLabel)
		require.NoError(t, err, "insert conclusion %s", rec.ID)
	}
}

func jsonb(t *testing.T, m map[string]string) interface{} {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return string(raw)
}

func testInterview(t *testing.T, ctx context.Context, engines engine.Provider, log logger.Logger) {
	start := si.NewHandler(si.DefaultConfig(), engines, nil, log)
	submit := sa.NewHandler(sa.DefaultConfig(), engines, nil, log)
	back := prevq.NewHandler(prevq.DefaultConfig(), engines, log)
	early := cec.NewHandler(cec.DefaultConfig(), engines, log)
	validate := va.NewHandler(va.DefaultConfig(), engines, log)
	analyze := ae.NewHandler(ae.DefaultConfig(), engines, log)

	started, err := start.Execute(ctx, &si.Input{})
	require.NoError(t, err)
	require.NotNil(t, started.CurrentQuestion)
	assert.Equal(t, "q_residence_lux", started.CurrentQuestion.AnswerKey)

	answers := []struct {
		key   string
		value interface{}
	}{
		{"q_residence_lux", "opt_oui"},
		{"q_age", 34},
		{"q_institution", "opt_non"},
		{"q_menage", "opt_monoparental"},
		{"q_nb_enfants", 2},
		{"q_logement", "opt_locataire"},
		{"q_loyer", 1450},
		{"q_revenus_mensuels", 2300},
	}

	state := started.Interview
	for i, a := range answers {
		out, err := submit.Execute(ctx, &sa.Input{Interview: roundTrip(t, state), AnswerKey: a.key, AnswerValue: a.value})
		require.NoError(t, err, "answer %s", a.key)
		state = out.Interview

		// Going back and answering again lands on the same question.
		if i == 3 {
			prev, err := back.Execute(ctx, &prevq.Input{Interview: roundTrip(t, state)})
			require.NoError(t, err)
			require.NotNil(t, prev.CurrentQuestion)
			assert.Equal(t, "q_menage", prev.CurrentQuestion.AnswerKey)

			again, err := submit.Execute(ctx, &sa.Input{Interview: prev.Interview, AnswerKey: a.key, AnswerValue: a.value})
			require.NoError(t, err)
			assert.Equal(t, out.Interview.CurrentQuestionID, again.Interview.CurrentQuestionID)
			state = again.Interview
		}
	}
	assert.Equal(t, navigator.StatusComplete, state.Status)
	assert.Equal(t, 100, state.Progress)

	done, err := early.Execute(ctx, &cec.Input{Interview: state})
	require.NoError(t, err)
	assert.True(t, done.CanCompleteNow)
	assert.Empty(t, done.MissingKeys)

	valid, err := validate.Execute(ctx, &va.Input{Interview: state})
	require.NoError(t, err)
	assert.True(t, valid.AnswersValid)

	result, err := analyze.Execute(ctx, &ae.Input{Interview: state})
	require.NoError(t, err)
	assert.True(t, result.HasEligibleAid)
	assert.Equal(t, 2, result.EligibilitySummary.Eligible)
	assert.Equal(t, 1, result.EligibilitySummary.Maybe)
}

// roundTrip passes state through JSON the way it travels between jobs.
func roundTrip(t *testing.T, state *navigator.State) *navigator.State {
	t.Helper()
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	var out navigator.State
	require.NoError(t, json.Unmarshal(raw, &out))
	return &out
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_SubmitAnswer(b *testing.B) {
	engines := engine.Static(enginetest.New(b))
	h := sa.NewHandler(sa.DefaultConfig(), engines, nil, logger.NewNoOpLogger())
	ctx := context.Background()
	e, _ := engines.Engine(ctx)
	state := e.Start("bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(ctx, &sa.Input{Interview: state, AnswerKey: "q_residence_lux", AnswerValue: "opt_oui"}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHandler_AnalyzeEligibility(b *testing.B) {
	h := ae.NewHandler(ae.DefaultConfig(), engine.Static(enginetest.New(b)), logger.NewNoOpLogger())
	ctx := context.Background()
	input := &ae.Input{Answers: models.AnswerSet{
		"q_residence_lux": "opt_oui", "q_age": 35, "q_institution": "opt_non", "q_revenus_mensuels": 1500,
	}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(ctx, input); err != nil {
			b.Fatal(err)
		}
	}
}
