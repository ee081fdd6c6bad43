package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finalqr/qrcard"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Card struct {
	bun.BaseModel `bun:"table:card"`

	Id           string    `bun:",pk,type:uuid"`
	CreatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Name         string
	Email        string
	WorkEmail    string
	Organization string
	Phone        string
	Address      string
	YoutubeUrl   string
	FacebookUrl  string
	LinkdenUrl   string
	TwitterUrl   string
	UserImage    string
	Allowed      bool `bun:",notnull,default:false"`
}

func (c Card) ToDomain() qrcard.Card {
	return qrcard.Card{
		Id:           qrcard.CardId(c.Id),
		CreatedAt:    c.CreatedAt,
		Name:         c.Name,
		Email:        c.Email,
		WorkEmail:    c.WorkEmail,
		Organization: c.Organization,
		Phone:        c.Phone,
		Address:      c.Address,
		YoutubeUrl:   c.YoutubeUrl,
		FacebookUrl:  c.FacebookUrl,
		LinkdenUrl:   c.LinkdenUrl,
		TwitterUrl:   c.TwitterUrl,
		UserImage:    c.UserImage,
		Allowed:      c.Allowed,
	}
}

type CardStore struct {
	DB *bun.DB
}

var _ qrcard.CardStore = (*CardStore)(nil)

func (s *CardStore) Create(ctx context.Context, draft qrcard.CardDraft) (qrcard.Card, error) {
	card := &Card{
		Id:           uuid.New().String(),
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
	_, err := s.DB.NewInsert().
		Model(card).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return qrcard.Card{}, fmt.Errorf("insert card: %w", err)
	}
	return card.ToDomain(), nil
}

func (s *CardStore) All(ctx context.Context) ([]qrcard.Card, error) {
	var cards []Card
	err := s.DB.NewSelect().
		Model(&cards).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select cards: %w", err)
	}
	mapped := make([]qrcard.Card, len(cards))
	for i, c := range cards {
		mapped[i] = c.ToDomain()
	}
	return mapped, nil
}

func (s *CardStore) ById(ctx context.Context, id qrcard.CardId) (qrcard.Card, error) {
	if !validCardId(id) {
		return qrcard.Card{}, qrcard.ErrCardNotFound
	}
	card := new(Card)
	err := s.DB.NewSelect().
		Model(card).
		Where(`id=?`, string(id)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return qrcard.Card{}, qrcard.ErrCardNotFound
		} else {
			return qrcard.Card{}, fmt.Errorf("select card: %w", err)
		}
	}
	return card.ToDomain(), nil
}

func (s *CardStore) SetAllowed(ctx context.Context, id qrcard.CardId, allowed bool) (qrcard.Card, error) {
	if !validCardId(id) {
		return qrcard.Card{}, qrcard.ErrCardNotFound
	}
	card := new(Card)
	res, err := s.DB.NewUpdate().
		Model(card).
		Set(`allowed=?`, allowed).
		Where(`id=?`, string(id)).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return qrcard.Card{}, fmt.Errorf("update card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return qrcard.Card{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return qrcard.Card{}, qrcard.ErrCardNotFound
	}
	return card.ToDomain(), nil
}

func (s *CardStore) Delete(ctx context.Context, id qrcard.CardId) error {
	if !validCardId(id) {
		return qrcard.ErrCardNotFound
	}
	res, err := s.DB.NewDelete().
		Model((*Card)(nil)).
		Where(`id=?`, string(id)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return qrcard.ErrCardNotFound
	}
	return nil
}

// Malformed ids would fail the uuid column cast with a generic pg error.
// Treat them as a plain lookup miss instead.
func validCardId(id qrcard.CardId) bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}
