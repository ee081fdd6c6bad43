package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/finalqr/qrcard"
	"github.com/google/uuid"
)

type CardStore struct {
	cards map[qrcard.CardId]qrcard.Card
	order []qrcard.CardId
	mutex sync.RWMutex
}

func NewCardStore() CardStore {
	return CardStore{
		cards: map[qrcard.CardId]qrcard.Card{},
		order: []qrcard.CardId{},
		mutex: sync.RWMutex{},
	}
}

func (s *CardStore) Create(ctx context.Context, draft qrcard.CardDraft) (qrcard.Card, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := qrcard.CardId(uuid.New().String())
	card := qrcard.Card{
		Id:           id,
		CreatedAt:    time.Now(),
		Name:         draft.Name,
		Email:        draft.Email,
		WorkEmail:    draft.WorkEmail,
		Organization: draft.Organization,
		Phone:        draft.Phone,
		Address:      draft.Address,
		YoutubeUrl:   draft.YoutubeUrl,
		FacebookUrl:  draft.FacebookUrl,
		LinkdenUrl:   draft.LinkdenUrl,
		TwitterUrl:   draft.TwitterUrl,
		UserImage:    draft.UserImage,
	}
	s.cards[id] = card
	s.order = append(s.order, id)

	return card, nil
}

func (s *CardStore) All(ctx context.Context) ([]qrcard.Card, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cards := make([]qrcard.Card, 0, len(s.order))
	for _, id := range s.order {
		if card, ok := s.cards[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (s *CardStore) ById(ctx context.Context, id qrcard.CardId) (qrcard.Card, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return card, qrcard.ErrCardNotFound
	}
	return card, nil
}

func (s *CardStore) SetAllowed(ctx context.Context, id qrcard.CardId, allowed bool) (qrcard.Card, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return card, qrcard.ErrCardNotFound
	}
	card.Allowed = allowed
	s.cards[id] = card
	return card, nil
}

func (s *CardStore) Delete(ctx context.Context, id qrcard.CardId) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.cards[id]; !ok {
		return qrcard.ErrCardNotFound
	}
	delete(s.cards, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
