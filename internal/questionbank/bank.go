package questionbank

import (
	"context"

	"github.com/abhisek/adaptiq/internal/store"
)

// Bank is the append-only per-concept question bank.
type Bank struct {
	repo store.QuestionBankRepo
}

// NewBank returns a Bank backed by repo.
func NewBank(repo store.QuestionBankRepo) *Bank {
	return &Bank{repo: repo}
}

// Append adds questions to the concept's bank. Existing entries are never
// replaced or removed.
func (b *Bank) Append(ctx context.Context, conceptID string, qs []Question) error {
	data := make([]store.QuestionData, len(qs))
	for i, q := range qs {
		data[i] = q.ToData()
	}
	return b.repo.Append(ctx, conceptID, data)
}

// List returns every question ever banked for the concept, oldest first.
func (b *Bank) List(ctx context.Context, conceptID string) ([]Question, error) {
	data, err := b.repo.List(ctx, conceptID)
	if err != nil {
		return nil, err
	}
	qs := make([]Question, len(data))
	for i, d := range data {
		qs[i] = FromData(d)
	}
	return qs, nil
}
