package repository

import (
	"ads-board/internal/domain"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adColumns = []string{"title", "seller", "category", "description", "price", "contact", "image_base64"}

func TestMysqlAdRepository_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT title, seller, category, description, price, contact, image_base64").
		WillReturnRows(sqlmock.NewRows(adColumns).
			AddRow("iPhone 13 Pro", "Jane", "Electronics", "Like new, 256GB", 650.0, "jane@example.com", "iVBORw0KGgo=").
			AddRow("Garden Hose", "Anonymous", "Home & Garden", "25m", nil, "+1 234 567 890", nil))

	repo := NewMysqlAdRepository(db, newTestMetrics())

	ads, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleAds(), ads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMysqlAdRepository_LoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT title").WillReturnError(errors.New("connection refused"))

	repo := NewMysqlAdRepository(db, newTestMetrics())

	ads, err := repo.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, ads)
}

func TestMysqlAdRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ads := sampleAds()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ads").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO ads").
		WithArgs("iPhone 13 Pro", "Jane", "Electronics", "Like new, 256GB", 650.0, "jane@example.com", "iVBORw0KGgo=").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ads").
		WithArgs("Garden Hose", domain.DefaultSeller, "Home & Garden", "25m", nil, "+1 234 567 890", nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := NewMysqlAdRepository(db, newTestMetrics())

	require.NoError(t, repo.Save(context.Background(), ads))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMysqlAdRepository_SaveRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ads").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO ads").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewMysqlAdRepository(db, newTestMetrics())

	err = repo.Save(context.Background(), sampleAds())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ads").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
