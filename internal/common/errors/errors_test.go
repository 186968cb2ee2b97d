package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedRetries int
	}{
		{
			name:            "store query failure is retried",
			err:             NewStoreQueryFailedError("questions", fmt.Errorf("connection reset")),
			expectedRetries: 3,
		},
		{
			name:            "cache failure is retried once",
			err:             NewCacheUnavailableError(fmt.Errorf("i/o timeout")),
			expectedRetries: 1,
		},
		{
			name:            "catalog error is thrown",
			err:             NewCatalogError(ErrCodeCatalogEmpty, "no questions"),
			expectedRetries: 0,
		},
		{
			name:            "unknown answer key is thrown",
			err:             NewAnswerKeyUnknownError("q_missing"),
			expectedRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmnErr.Code)
			assert.Equal(t, tt.expectedRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestBPMNError_ToErrorVariables_IncludesMetadata(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewAnswerKeyUnknownError("q_age"))
	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "ANSWER_KEY_UNKNOWN", vars["errorCode"])
	assert.Equal(t, "q_age", vars["answerKey"])
	assert.Equal(t, false, vars["retryable"])
}

func TestIsCatalogError(t *testing.T) {
	assert.True(t, IsCatalogError(NewCatalogError(ErrCodeCatalogDuplicateKey, "q_age")))
	assert.True(t, IsCatalogError(NewCatalogError(ErrCodeRulesInvalid, "bad category")))
	assert.True(t, IsCatalogError(fmt.Errorf("load: %w", NewCatalogError(ErrCodeCatalogEmpty, ""))))
	assert.False(t, IsCatalogError(NewAnswerInvalidError("q_age", "not a number")))
	assert.False(t, IsCatalogError(stderrors.New("plain")))
	assert.False(t, IsCatalogError(nil))
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewStoreConnectionFailedError(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORE_CONNECTION_FAILED")
	assert.True(t, HasCode(err, ErrCodeStoreConnectionFailed))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeCatalogInvalid))
	assert.Equal(t, "INTERVIEW", GetErrorCategory(ErrCodeSessionComplete))
	assert.Equal(t, "STORE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.False(t, IsRetryableErrorCode(ErrCodeAnswerInvalid))
	assert.True(t, IsRetryableErrorCode(ErrCodeStoreQueryFailed))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "SESSION_COMPLETE", CodeOf(NewSessionCompleteError("s1")))
	assert.Equal(t, "STORE_QUERY_FAILED", CodeOf(fmt.Errorf("load: %w", NewStoreQueryFailedError("questions", stderrors.New("boom")))))
	assert.Equal(t, "UNKNOWN_ERROR", CodeOf(stderrors.New("plain")))
}
