package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

// fakeDB answers Exec with a fixed row count and QueryRow with scan.
type fakeDB struct {
	affected int64
	execErr  error
	scan     func(dest ...any) error

	execSQL  string
	execArgs []any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL, f.execArgs = sql, args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", f.affected)), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow(f.scan)
}

type fakeRow func(dest ...any) error

func (r fakeRow) Scan(dest ...any) error { return r(dest...) }

// rowExists answers a SELECT EXISTS query.
func rowExists(exists bool) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*bool) = exists
		return nil
	}
}

func failScan(err error) func(dest ...any) error {
	return func(...any) error { return err }
}

func TestTranslate(t *testing.T) {
	other := &pgconn.PgError{Code: "23503"}

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), domain.ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: pgUniqueViolation}), domain.ErrDuplicate)
	assert.Same(t, other, translate(other))
}

func TestAgreementUpdateVersionGuard(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		exists   bool
		want     error
	}{
		{"current version", 1, true, nil},
		{"stale version", 0, true, domain.ErrStaleVersion},
		{"missing row", 0, false, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{affected: tt.affected, scan: rowExists(tt.exists)}
			ag := &domain.Agreement{ID: 7, Version: 3, Status: domain.AgreementStatusAwaitingSignatures}

			err := NewAgreementRepository(db).Update(context.Background(), ag)
			assert.Contains(t, db.execSQL, "WHERE id = $15 AND version = $16")
			assert.Equal(t, []any{int64(7), 3}, db.execArgs[len(db.execArgs)-2:])
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, 4, ag.Version)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 3, ag.Version)
		})
	}
}

func TestAgreementDeleteVersionGuard(t *testing.T) {
	db := &fakeDB{affected: 0, scan: rowExists(true)}
	err := NewAgreementRepository(db).Delete(context.Background(), 7, 2)
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	db = &fakeDB{affected: 0, scan: rowExists(false)}
	err = NewAgreementRepository(db).Delete(context.Background(), 7, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgreementGetByIDMissing(t *testing.T) {
	db := &fakeDB{scan: failScan(pgx.ErrNoRows)}
	_, err := NewAgreementRepository(db).GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgreementCreateDuplicateApplication(t *testing.T) {
	db := &fakeDB{scan: failScan(&pgconn.PgError{Code: pgUniqueViolation})}
	err := NewAgreementRepository(db).Create(context.Background(), &domain.Agreement{ApplicationID: 3})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestApplicationUpdateStatusGuard(t *testing.T) {
	ctx := context.Background()

	db := &fakeDB{affected: 1}
	require.NoError(t, NewApplicationRepository(db).UpdateStatus(ctx, 4, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted))
	assert.Contains(t, db.execSQL, "AND status = $4")
	assert.Equal(t, domain.ApplicationStatusPending, db.execArgs[3])

	db = &fakeDB{affected: 0, scan: rowExists(true)}
	err := NewApplicationRepository(db).UpdateStatus(ctx, 4, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	db = &fakeDB{affected: 0, scan: rowExists(false)}
	err = NewApplicationRepository(db).UpdateStatus(ctx, 4, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveConvocationMissingApplication(t *testing.T) {
	db := &fakeDB{affected: 0}
	err := NewApplicationRepository(db).SaveConvocation(context.Background(), 4, domain.Convocation{Location: "Bureau 204"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluationUpdate(t *testing.T) {
	ctx := context.Background()
	ev := &domain.Evaluation{ID: 9, InstructorID: 40, SubmittedByInstructor: true, Version: 2}

	db := &fakeDB{affected: 1}
	require.NoError(t, NewEvaluationRepository(db).Update(ctx, ev))
	assert.Equal(t, int64(40), db.execArgs[0], "instructor binding is persisted")
	assert.Equal(t, 3, ev.Version)

	db = &fakeDB{affected: 0, scan: rowExists(true)}
	assert.ErrorIs(t, NewEvaluationRepository(db).Update(ctx, ev), domain.ErrStaleVersion)

	db = &fakeDB{affected: 0, scan: rowExists(false)}
	assert.ErrorIs(t, NewEvaluationRepository(db).Update(ctx, ev), domain.ErrNotFound)

	db = &fakeDB{execErr: errors.New("connection reset")}
	assert.EqualError(t, NewEvaluationRepository(db).Update(ctx, ev), "connection reset")
}

func TestEvaluationCreateDuplicatePair(t *testing.T) {
	db := &fakeDB{scan: failScan(&pgconn.PgError{Code: pgUniqueViolation})}
	err := NewEvaluationRepository(db).Create(context.Background(), &domain.Evaluation{StudentID: 1, OfferID: 10})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestEvaluationLookupMissing(t *testing.T) {
	db := &fakeDB{scan: failScan(pgx.ErrNoRows)}
	_, err := NewEvaluationRepository(db).GetByStudentAndOffer(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
