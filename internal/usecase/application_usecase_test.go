package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
)

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newFixture(t)
	app, err := f.apps.Apply(context.Background(), f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.False(t, app.Convened)
	require.NotNil(t, app.OfferTitle)
	assert.Equal(t, f.offer.Title, *app.OfferTitle)
}

func TestApplyTwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)

	_, err = f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	assertKind(t, err, apperror.KindConflict)

	mine, err := f.apps.GetMyApplications(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApplyPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draftOffer := f.store.AddOffer(domain.Offer{EmployerID: f.employer.ID, Title: "Draft", Status: domain.OfferStatusPending})
	pendingCV := f.store.AddCV(domain.CV{StudentID: f.student.ID, Status: domain.CVStatusPending})
	other := f.store.AddUser(domain.User{Role: domain.RoleStudent})
	otherCV := f.store.AddCV(domain.CV{StudentID: other.ID, Status: domain.CVStatusApproved})

	tests := []struct {
		name      string
		studentID int64
		offerID   int64
		cvID      int64
		kind      apperror.Kind
	}{
		{"missing student", 999, f.offer.ID, f.cv.ID, apperror.KindNotFound},
		{"missing offer", f.student.ID, 999, f.cv.ID, apperror.KindNotFound},
		{"missing cv", f.student.ID, f.offer.ID, 999, apperror.KindNotFound},
		{"foreign cv", f.student.ID, f.offer.ID, otherCV.ID, apperror.KindForbidden},
		{"offer not published", f.student.ID, draftOffer.ID, f.cv.ID, apperror.KindInvalidState},
		{"cv not approved", f.student.ID, f.offer.ID, pendingCV.ID, apperror.KindInvalidState},
		{"employer cannot apply", f.employer.ID, f.offer.ID, f.cv.ID, apperror.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.apps.Apply(ctx, tt.studentID, tt.offerID, tt.cvID)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestApplicationAcceptanceFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)

	app, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusAcceptedByEmployer, app.Status)

	app, err = f.apps.AcceptByStudent(ctx, f.student.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusAccepted, app.Status)

	_, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
	assertKind(t, err, apperror.KindInvalidState)
	_, err = f.apps.RejectByStudent(ctx, f.student.ID, app.ID)
	assertKind(t, err, apperror.KindInvalidState)
}

func TestStudentCannotAcceptPendingApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)

	_, err = f.apps.AcceptByStudent(ctx, f.student.ID, app.ID)
	assertKind(t, err, apperror.KindInvalidState)

	_, err = f.apps.RejectByStudent(ctx, f.student.ID, app.ID)
	assertKind(t, err, apperror.KindInvalidState)

	stored, err := f.apps.GetByID(ctx, domain.Actor{ID: f.student.ID, Role: domain.RoleStudent}, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, stored.Status)
}

func TestApplicationRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("employer rejects pending", func(t *testing.T) {
		f := newFixture(t)
		app, _ := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
		app, err := f.apps.RejectByEmployer(ctx, f.employer.ID, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRejected, app.Status)

		_, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
		assertKind(t, err, apperror.KindInvalidState)
	})

	t.Run("student declines accepted offer", func(t *testing.T) {
		f := newFixture(t)
		app, _ := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
		_, err := f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
		require.NoError(t, err)

		_, err = f.apps.RejectByEmployer(ctx, f.employer.ID, app.ID)
		assertKind(t, err, apperror.KindInvalidState)

		app, err = f.apps.RejectByStudent(ctx, f.student.ID, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRejected, app.Status)
	})
}

func TestApplicationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)

	otherEmployer := f.store.AddUser(domain.User{Role: domain.RoleEmployer})
	_, err = f.apps.AcceptByEmployer(ctx, otherEmployer.ID, app.ID)
	assertKind(t, err, apperror.KindForbidden)

	_, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
	require.NoError(t, err)

	_, err = f.apps.AcceptByStudent(ctx, 999, app.ID)
	assertKind(t, err, apperror.KindForbidden)

	_, err = f.apps.ListByOffer(ctx, otherEmployer.ID, f.offer.ID)
	assertKind(t, err, apperror.KindForbidden)

	list, err := f.apps.ListByOffer(ctx, f.employer.ID, f.offer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Léa Tremblay", *list[0].StudentName)

	_, err = f.apps.GetByID(ctx, domain.Actor{ID: f.instructor.ID, Role: domain.RoleInstructor}, app.ID)
	assertKind(t, err, apperror.KindForbidden)
	_, err = f.apps.GetByID(ctx, domain.Actor{ID: f.manager.ID, Role: domain.RoleManager}, app.ID)
	assert.NoError(t, err)
}

func TestConveneIsIndependentOfStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)

	conv := domain.Convocation{ScheduledAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), Location: "Bureau 204"}
	app, err = f.apps.Convene(ctx, f.employer.ID, app.ID, conv)
	require.NoError(t, err)
	assert.True(t, app.Convened)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)

	// A convened application still follows the accept/reject table.
	app, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusAcceptedByEmployer, app.Status)
	assert.True(t, app.Convened)
	require.NotNil(t, app.Convocation)
	assert.Equal(t, "Bureau 204", app.Convocation.Location)

	_, err = f.apps.AcceptByStudent(ctx, f.student.ID, app.ID)
	require.NoError(t, err)
	_, err = f.apps.Convene(ctx, f.employer.ID, app.ID, conv)
	assertKind(t, err, apperror.KindInvalidState)
}

func TestConveneValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, _ := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)

	_, err := f.apps.Convene(ctx, f.employer.ID, app.ID, domain.Convocation{Location: "Bureau 204"})
	assertKind(t, err, apperror.KindInvalidArgument)

	_, err = f.apps.Convene(ctx, f.employer.ID, app.ID, domain.Convocation{ScheduledAt: time.Now(), Location: "   "})
	assertKind(t, err, apperror.KindInvalidArgument)

	_, err = f.apps.Convene(ctx, f.employer.ID, app.ID,
		domain.Convocation{ScheduledAt: time.Now(), Location: "Bureau 204", Message: "À bientôt 😀"})
	assertKind(t, err, apperror.KindInvalidArgument)
}

// Walks every (status, action, role) triple and checks the table is the only source of edges.
func TestTransitionTableIsExhaustive(t *testing.T) {
	statuses := []domain.ApplicationStatus{
		domain.ApplicationStatusPending, domain.ApplicationStatusAcceptedByEmployer,
		domain.ApplicationStatusAccepted, domain.ApplicationStatusRejected,
	}
	actions := []domain.ApplicationAction{domain.ApplicationActionAccept, domain.ApplicationActionReject}
	roles := []domain.Role{domain.RoleStudent, domain.RoleEmployer}

	legal := 0
	for _, from := range statuses {
		for _, action := range actions {
			for _, role := range roles {
				to, ok := domain.NextApplicationStatus(from, action, role)
				if from.IsTerminal() {
					assert.False(t, ok, "%s is terminal", from)
					continue
				}
				if ok {
					legal++
					assert.NotEqual(t, from, to)
				}
				if to == domain.ApplicationStatusAccepted {
					assert.Equal(t, domain.ApplicationStatusAcceptedByEmployer, from, "Accepted is only reachable from AcceptedByEmployer")
				}
			}
		}
	}
	assert.Equal(t, 4, legal)
}
