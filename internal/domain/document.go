package domain

import "context"

// Supported document locales
const (
	LocaleFrench  = "fr"
	LocaleEnglish = "en"
)

// NormalizeLocale falls back to French for anything unsupported.
func NormalizeLocale(locale string) string {
	if locale == LocaleEnglish {
		return LocaleEnglish
	}
	return LocaleFrench
}

// AgreementDocument is everything printed on an agreement.
type AgreementDocument struct {
	Agreement *Agreement
	Student   *User
	Employer  *User
	Offer     *Offer
	Locale    string
}

// EvaluationDocument is everything printed on one side of an evaluation.
type EvaluationDocument struct {
	Evaluation *Evaluation
	Side       EvaluationSide
	Student    *User
	Evaluator  *User
	Offer      *Offer
	Form       EvaluationForm
	Locale     string
}

// DocumentGenerator renders and stores documents, returning the stored path.
type DocumentGenerator interface {
	GenerateAgreement(ctx context.Context, doc AgreementDocument) (string, error)
	GenerateEvaluation(ctx context.Context, doc EvaluationDocument) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	// Discard removes a document whose owning record was never saved.
	Discard(ctx context.Context, path string) error
}

// Notifier tells parties about agreement milestones. Failures never undo a transition.
type Notifier interface {
	AgreementAwaitingSignatures(ctx context.Context, ag *Agreement, recipients []User) error
	AgreementValidated(ctx context.Context, ag *Agreement, recipients []User) error
}
