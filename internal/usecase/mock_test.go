package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

// MockAgreementRepo delegates reads to a real repository and lets tests script writes.
type MockAgreementRepo struct {
	mock.Mock
	domain.AgreementRepository
}

func (m *MockAgreementRepo) Update(ctx context.Context, ag *domain.Agreement) error {
	return m.Called(ctx, ag).Error(0)
}

func (m *MockAgreementRepo) Delete(ctx context.Context, id int64, version int) error {
	return m.Called(ctx, id, version).Error(0)
}

type MockEvaluationRepo struct {
	mock.Mock
	domain.EvaluationRepository
}

func (m *MockEvaluationRepo) Update(ctx context.Context, ev *domain.Evaluation) error {
	return m.Called(ctx, ev).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AgreementAwaitingSignatures(ctx context.Context, ag *domain.Agreement, recipients []domain.User) error {
	return m.Called(ctx, ag, recipients).Error(0)
}

func (m *MockNotifier) AgreementValidated(ctx context.Context, ag *domain.Agreement, recipients []domain.User) error {
	return m.Called(ctx, ag, recipients).Error(0)
}
