package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/commission"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

var (
	commissioned = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	received     = commissioned.Add(48 * time.Hour)
)

func newMockRepository(t *testing.T) (*CommissionsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewCommissionsRepository(&dbpg.DB{Master: db}, retry.Strategy{Attempts: 1}), mock
}

func query(sql string) string {
	return regexp.QuoteMeta(sql)
}

func commissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "artist_id", "name", "price", "date_commissioned",
		"title", "description", "date_received", "nsfw", "thumbnail_id", "created_at",
		"id", "bucket_key", "size", "filename", "content_type",
	})
}

func imageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "placeholder_uri"})
}

func alternateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "image_id", "bucket_key", "size", "width", "height", "filename", "content_type", "user_provided",
	})
}

func pendingCommission() *domain.Commission {
	return &domain.Commission{
		ArtistID:         7,
		CharacterIDs:     []int64{3},
		Price:            120,
		DateCommissioned: commissioned,
		Invoice: domain.File{
			Key:         "invoice-key",
			Size:        2048,
			Filename:    "invoice.pdf",
			ContentType: "application/pdf",
		},
	}
}

func TestCreate_MapsForeignKeyViolationAndRollsBack(t *testing.T) {
	fkErr := &pq.Error{Code: pgForeignKeyViolation, Constraint: "commissions_artist_id_fkey"}

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name: "unknown artist",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query("INSERT INTO commissions")).WillReturnError(fkErr)
			},
		},
		{
			name: "unknown character",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query("INSERT INTO commissions")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
				mock.ExpectExec(query("INSERT INTO commission_characters")).
					WithArgs(int64(5), int64(3)).
					WillReturnError(fkErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectBegin()
			mock.ExpectQuery(query("INSERT INTO files")).
				WithArgs("invoice-key", int64(2048), "invoice.pdf", "application/pdf").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
			tt.expect(mock)
			mock.ExpectRollback()

			_, err := repo.Create(context.Background(), pendingCommission())

			assert.ErrorIs(t, err, commission.ErrReferenceNotFound)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_CommitsGraph(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := commissioned.Add(time.Hour)

	c := pendingCommission()
	c.Images = []domain.Image{{
		Name:           "front",
		PlaceholderURI: "data:image/png;base64,AAAA",
		Alternates: []domain.Alternate{
			{Key: "alt-key", Size: 100, Width: 640, Height: 480, Filename: "front.png", ContentType: "image/png", UserProvided: true},
		},
	}}

	mock.ExpectBegin()
	mock.ExpectQuery(query("INSERT INTO files")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectQuery(query("INSERT INTO commissions")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(query("INSERT INTO commission_characters")).
		WithArgs(int64(5), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(query("INSERT INTO images")).
		WithArgs(int64(5), 0, "front", "data:image/png;base64,AAAA").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(70)))
	mock.ExpectExec(query("INSERT INTO alternates")).
		WithArgs(int64(70), "alt-key", int64(100), 640, 480, "front.png", "image/png", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(query("WHERE c.id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(commissionRows().AddRow(
			int64(5), int64(7), "Artist", 120.0, commissioned,
			nil, nil, nil, false, nil, created,
			int64(10), "invoice-key", int64(2048), "invoice.pdf", "application/pdf",
		))
	mock.ExpectQuery(query("FROM commission_characters")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "Character"))
	mock.ExpectQuery(query("WHERE commission_id = $1")).
		WillReturnRows(imageRows().AddRow(int64(70), "front", "data:image/png;base64,AAAA"))
	mock.ExpectQuery(query("FROM alternates")).
		WillReturnRows(alternateRows().AddRow(int64(1), int64(70), "alt-key", int64(100), int64(640), int64(480), "front.png", "image/png", true))

	got, err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, []int64{3}, got.CharacterIDs)
	assert.Nil(t, got.Thumbnail)
	require.Len(t, got.Images, 1)
	require.Len(t, got.Images[0].Alternates, 1)
	assert.Equal(t, "alt-key", got.Images[0].Alternates[0].Key)
	assert.Equal(t, 640, got.Images[0].Alternates[0].Width)
}

func TestComplete_LockRejects(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want error
	}{
		{"not found", sqlmock.NewRows([]string{"thumbnail_id"}), commission.ErrCommissionNotFound},
		{"already complete", sqlmock.NewRows([]string{"thumbnail_id"}).AddRow(int64(9)), commission.ErrAlreadyComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectBegin()
			mock.ExpectQuery(query("SELECT thumbnail_id FROM commissions WHERE id = $1 FOR UPDATE")).
				WithArgs(int64(5)).
				WillReturnRows(tt.rows)
			mock.ExpectRollback()

			_, err := repo.Complete(context.Background(), 5, domain.CompletionDetails{
				Title:        "Title",
				Description:  "Description",
				DateReceived: received,
			})

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDelete_RemovesGraphUnderLock(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := commissioned.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(query("SELECT thumbnail_id, invoice_id FROM commissions WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"thumbnail_id", "invoice_id"}).AddRow(int64(9), int64(4)))

	mock.ExpectQuery(query("WHERE c.id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(commissionRows().AddRow(
			int64(5), int64(7), "Artist", 120.0, commissioned,
			"Title", "Description", received, false, int64(9), created,
			int64(4), "invoice-key", int64(2048), "invoice.pdf", "application/pdf",
		))
	mock.ExpectQuery(query("FROM commission_characters")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(query("WHERE commission_id = $1")).
		WillReturnRows(imageRows().AddRow(int64(7), "front", "data:"))
	mock.ExpectQuery(query("FROM alternates")).
		WillReturnRows(alternateRows().AddRow(int64(1), int64(7), "image-key", int64(100), int64(640), int64(480), "front.png", "image/png", true))
	mock.ExpectQuery(query("WHERE id = ANY($1)")).
		WillReturnRows(imageRows().AddRow(int64(9), "front", "data:"))
	mock.ExpectQuery(query("FROM alternates")).
		WillReturnRows(alternateRows().AddRow(int64(2), int64(9), "thumb-key", int64(50), int64(512), int64(384), "generatedThumbnail_front.png", "image/png", false))

	mock.ExpectExec(query("DELETE FROM commissions WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query("DELETE FROM images WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query("DELETE FROM files WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"invoice-key", "image-key", "thumb-key"}, got.StorageKeys())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(query("SELECT thumbnail_id, invoice_id FROM commissions WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"thumbnail_id", "invoice_id"}))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 5)

	assert.ErrorIs(t, err, commission.ErrCommissionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RollsBackWhenInvoiceDeleteFails(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := commissioned.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(query("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"thumbnail_id", "invoice_id"}).AddRow(nil, int64(4)))
	mock.ExpectQuery(query("WHERE c.id = $1")).
		WillReturnRows(commissionRows().AddRow(
			int64(5), int64(7), "Artist", 120.0, commissioned,
			nil, nil, nil, false, nil, created,
			int64(4), "invoice-key", int64(2048), "invoice.pdf", "application/pdf",
		))
	mock.ExpectQuery(query("FROM commission_characters")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(query("WHERE commission_id = $1")).
		WillReturnRows(imageRows())
	mock.ExpectExec(query("DELETE FROM commissions WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query("DELETE FROM files WHERE id = $1")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 5)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
