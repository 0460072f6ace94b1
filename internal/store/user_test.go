package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Harshith014/resumeUploader/types"
	"github.com/lib/pq"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "image", "resume", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "Ann", "ann@x.com", "hash", "default.jpg", "", created, created))

	user, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if user.ID != 7 || user.Email != "ann@x.com" || user.PasswordHash != "hash" || !user.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantID  int
		wantErr error
	}{
		{
			name: "inserts and returns id",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO NOTHING")).
					WithArgs("Ann", "ann@x.com", "hash", types.DefaultImage, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			},
			wantID: 1,
		},
		{
			name: "conflict returns no rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "unique violation",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setup(mock)

			user, err := repo.Create(context.Background(), types.User{
				Name:         "Ann",
				Email:        "ann@x.com",
				PasswordHash: "hash",
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create error: %v", err)
			}
			if user.ID != tt.wantID || user.Image != types.DefaultImage || user.CreatedAt.IsZero() {
				t.Fatalf("unexpected user: %+v", user)
			}
		})
	}
}

func TestUserRepository_UpdatePartial(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	resume := "/uploads/resumes/resume-1.pdf"

	mock.ExpectQuery(regexp.QuoteMeta("SET name = COALESCE($1, name)")).
		WithArgs(nil, nil, nil, nil, resume, sqlmock.AnyArg(), 3).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(3, "Ann", "ann@x.com", "hash", "default.jpg", resume, now, now))

	user, err := repo.Update(context.Background(), 3, types.UserUpdate{Resume: &resume})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if user.Resume != resume {
		t.Fatalf("expected resume %q, got %q", resume, user.Resume)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateErrors(t *testing.T) {
	email := "taken@x.com"

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(context.Background(), 9, types.UserUpdate{Email: &email})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("email collision", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Update(context.Background(), 9, types.UserUpdate{Email: &email})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).WillReturnError(boom)

		_, err := repo.Update(context.Background(), 9, types.UserUpdate{Email: &email})
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped driver error, got %v", err)
		}
	})
}
