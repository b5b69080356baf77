package rules

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (pgxmock.PgxPoolIface, *http.ServeMux) {
	t.Helper()
	mock, _, svc := newService(t)
	mux := http.NewServeMux()
	NewHandler(svc, slog.Default()).Register(mux)
	return mock, mux
}

func TestHandler_CreateRule(t *testing.T) {
	t.Run("creates a rule", func(t *testing.T) {
		mock, mux := newTestMux(t)
		mock.ExpectQuery("INSERT INTO rules").
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body := `{"pattern": "GRAB", "priority": 10, "category": "Transport"}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString(body)))

		require.Equal(t, http.StatusCreated, rec.Code)

		var rule Rule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
		assert.Equal(t, "GRAB", rule.Pattern)
		assert.Equal(t, RuleActive, rule.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty pattern", func(t *testing.T) {
		_, mux := newTestMux(t)

		body := `{"pattern": "", "priority": 10, "category": "Transport"}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		_, mux := newTestMux(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString("{not json")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_ListRules(t *testing.T) {
	mock, mux := newTestMux(t)
	catID := uuid.New()
	mock.ExpectQuery("SELECT id, pattern, priority").WillReturnRows(ruleRows(catID))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rules []Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, "coffee", resp.Rules[0].Pattern)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_SetStatus(t *testing.T) {
	t.Run("deactivates a rule", func(t *testing.T) {
		mock, mux := newTestMux(t)
		id := uuid.New()
		mock.ExpectExec("UPDATE rules SET status").
			WithArgs(id, RuleInactive).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/rules/"+id.String()+"/status", bytes.NewBufferString(`{"status": "inactive"}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, mux := newTestMux(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/rules/"+uuid.NewString()+"/status", bytes.NewBufferString(`{"status": "paused"}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		_, mux := newTestMux(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/rules/nope/status", bytes.NewBufferString(`{"status": "inactive"}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Reapply(t *testing.T) {
	t.Run("reapplies globally with empty body", func(t *testing.T) {
		mock, mux := newTestMux(t)
		expectReapply(mock, uuid.New(), uuid.New())

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules/reapply", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Updated int `json:"updated"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		_, mux := newTestMux(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules/reapply", bytes.NewBufferString("{bad")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
