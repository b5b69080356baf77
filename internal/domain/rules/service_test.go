package rules

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/statements/internal/domain/statement"
)

type stubCategoryResolver struct {
	created []string
	id      uuid.UUID
}

func (s *stubCategoryResolver) GetOrCreateCategory(ctx context.Context, name string) (*statement.Category, error) {
	s.created = append(s.created, name)
	return &statement.Category{ID: s.id, Name: name}, nil
}

func newService(t *testing.T) (pgxmock.PgxPoolIface, *stubCategoryResolver, *Service) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	resolver := &stubCategoryResolver{id: uuid.New()}
	svc := NewService(mock, NewPostgresRepository(mock), resolver, slog.Default())
	return mock, resolver, svc
}

func TestService_CreateRule_LazyCategory(t *testing.T) {
	mock, resolver, svc := newService(t)

	mock.ExpectQuery("INSERT INTO rules").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rule, err := svc.CreateRule(context.Background(), "coffee", 5, "Dining", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dining"}, resolver.created)
	require.NotNil(t, rule.CategoryID)
	assert.Equal(t, resolver.id, *rule.CategoryID)
	assert.Equal(t, RuleActive, rule.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CreateRule_EmptyPattern(t *testing.T) {
	_, _, svc := newService(t)

	_, err := svc.CreateRule(context.Background(), "", 5, "", nil)
	assert.Error(t, err)
}

func ruleRows(catID uuid.UUID) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "pattern", "priority", "category_id", "subcategory", "status", "created_at"}).
		AddRow(uuid.New(), "coffee", 1, &catID, strP("Cafe"), RuleActive, time.Now())
}

func txnRows(txnID uuid.UUID) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "description", "category_id", "subcategory"}).
		AddRow(txnID, "STARBUCKS COFFEE", (*uuid.UUID)(nil), (*string)(nil)).
		AddRow(uuid.New(), "NO RULE MATCHES THIS", (*uuid.UUID)(nil), (*string)(nil))
}

func expectReapply(mock pgxmock.PgxPoolIface, catID, txnID uuid.UUID) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, pattern, priority").WillReturnRows(ruleRows(catID))
	mock.ExpectQuery("SELECT id, description, category_id").WillReturnRows(txnRows(txnID))
	mock.ExpectExec("UPDATE transactions SET category_id").
		WithArgs(txnID, &catID, strP("Cafe")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
}

func TestService_Reapply_ClassifiesMatchingTransactions(t *testing.T) {
	mock, _, svc := newService(t)

	catID := uuid.New()
	txnID := uuid.New()
	expectReapply(mock, catID, txnID)

	classified, err := svc.Reapply(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, classified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Reapply_IsIdempotent(t *testing.T) {
	mock, _, svc := newService(t)

	catID := uuid.New()
	txnID := uuid.New()

	// Same rule set and descriptions both times: identical assignments.
	expectReapply(mock, catID, txnID)
	expectReapply(mock, catID, txnID)

	first, err := svc.Reapply(context.Background(), nil)
	require.NoError(t, err)
	second, err := svc.Reapply(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_SetRuleStatus_Validates(t *testing.T) {
	_, _, svc := newService(t)

	err := svc.SetRuleStatus(context.Background(), uuid.New(), RuleStatus("paused"))
	assert.Error(t, err)
}
