package mock

import (
	"context"

	"github.com/finalqr/qrcard"
)

type CardStore struct {
	CreateFn     func(ctx context.Context, draft qrcard.CardDraft) (qrcard.Card, error)
	AllFn        func(ctx context.Context) ([]qrcard.Card, error)
	ByIdFn       func(ctx context.Context, id qrcard.CardId) (qrcard.Card, error)
	SetAllowedFn func(ctx context.Context, id qrcard.CardId, allowed bool) (qrcard.Card, error)
	DeleteFn     func(ctx context.Context, id qrcard.CardId) error
}

func (s CardStore) Create(ctx context.Context, draft qrcard.CardDraft) (qrcard.Card, error) {
	return s.CreateFn(ctx, draft)
}

func (s CardStore) All(ctx context.Context) ([]qrcard.Card, error) {
	return s.AllFn(ctx)
}

func (s CardStore) ById(ctx context.Context, id qrcard.CardId) (qrcard.Card, error) {
	return s.ByIdFn(ctx, id)
}

func (s CardStore) SetAllowed(ctx context.Context, id qrcard.CardId, allowed bool) (qrcard.Card, error) {
	return s.SetAllowedFn(ctx, id, allowed)
}

func (s CardStore) Delete(ctx context.Context, id qrcard.CardId) error {
	return s.DeleteFn(ctx, id)
}
