package qrcard

import (
	"context"
	"errors"
	"time"
)

var ErrCardNotFound = errors.New("card not found")

// Opaque token assigned by the store at creation.
type CardId string

// Card is a single submitted QR profile card.
type Card struct {
	Id        CardId
	CreatedAt time.Time

	Name         string
	Email        string
	WorkEmail    string
	Organization string
	Phone        string
	Address      string

	YoutubeUrl  string
	FacebookUrl string
	// Kept exactly as the frontend form names it.
	LinkdenUrl string
	TwitterUrl string

	// Durable url of the uploaded photo. Empty when no file was supplied.
	// Never mutated after creation.
	UserImage string

	// Gate controlling whether the card is served to visitors.
	// The only field mutable after creation.
	Allowed bool
}

// Submission fields. None of them is validated - empty values, duplicates
// and malformed urls are accepted as-is.
type CardDraft struct {
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
}

type CardStore interface {
	Create(ctx context.Context, draft CardDraft) (Card, error)

	All(ctx context.Context) ([]Card, error)

	// Returns ErrCardNotFound when the id is absent or malformed.
	ById(ctx context.Context, id CardId) (Card, error)

	// Returns the updated card. Missing id is reported as ErrCardNotFound.
	SetAllowed(ctx context.Context, id CardId, allowed bool) (Card, error)

	Delete(ctx context.Context, id CardId) error
}
