package transactionrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_CreateTransaction(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("INSERT INTO reward_transactions (account_id, points_delta, description, source)")

	t.Run("Saved", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(1, int64(-100), "Redeemed: Shaker Bottle", domain.SourceRedemption).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

		tx, err := repo.CreateTransaction(context.Background(), &domain.Transaction{
			AccountID:   1,
			PointsDelta: -100,
			Description: "Redeemed: Shaker Bottle",
			Source:      domain.SourceRedemption,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), tx.ID)
		assert.Equal(t, now, tx.CreatedAt)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(1, int64(10), "bonus", domain.SourcePromotion).
			WillReturnError(errors.New("database error"))

		tx, err := repo.CreateTransaction(context.Background(), &domain.Transaction{
			AccountID: 1, PointsDelta: 10, Description: "bonus", Source: domain.SourcePromotion,
		})
		assert.ErrorIs(t, err, domain.ErrBackingStore)
		assert.Nil(t, tx)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListTransactions(t *testing.T) {
	repo, mock := NewMock(t)
	columns := []string{"id", "account_id", "points_delta", "description", "source", "created_at"}

	tests := []struct {
		name      string
		cursor    *domain.Cursor
		mockSetup func()
		expectErr bool
		expected  int
	}{
		{
			name: "First page",
			mockSetup: func() {
				rows := pgxmock.NewRows(columns).
					AddRow(int64(2), 1, int64(-100), "Redeemed: Free Shipping", domain.SourceRedemption, now).
					AddRow(int64(1), 1, int64(250), "Purchase #12345678903", domain.SourcePurchase, now.Add(-time.Hour))
				mock.ExpectQuery(regexp.QuoteMeta("WHERE account_id = $1 ORDER BY")).
					WithArgs(1, 10).
					WillReturnRows(rows)
			},
			expected: 2,
		},
		{
			name:   "Page after cursor",
			cursor: &domain.Cursor{CreatedAt: now, ID: 2},
			mockSetup: func() {
				rows := pgxmock.NewRows(columns).
					AddRow(int64(1), 1, int64(250), "Purchase #12345678903", domain.SourcePurchase, now.Add(-time.Hour))
				mock.ExpectQuery(regexp.QuoteMeta("(created_at, id) < ($2, $3)")).
					WithArgs(1, now, int64(2), 10).
					WillReturnRows(rows)
			},
			expected: 1,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery("FROM reward_transactions").
					WithArgs(1, 10).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			txs, err := repo.ListTransactions(context.Background(), 1, tt.cursor, 10)
			if tt.expectErr {
				assert.ErrorIs(t, err, domain.ErrBackingStore)
			} else {
				assert.NoError(t, err)
				assert.Len(t, txs, tt.expected)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_SumDeltas(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("SELECT COALESCE(SUM(points_delta), 0)")

	mock.ExpectQuery(query).WithArgs(1).WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(150)))
	sum, err := repo.SumDeltas(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(150), sum)

	mock.ExpectQuery(query).WithArgs(1).WillReturnError(errors.New("database error"))
	_, err = repo.SumDeltas(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrBackingStore)

	assert.NoError(t, mock.ExpectationsWereMet())
}
