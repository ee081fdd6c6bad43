package inmem

import (
	"context"
	"testing"

	"github.com/finalqr/qrcard"
	"github.com/stretchr/testify/assert"
)

func TestCardStore(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	s := NewCardStore()
	_, err := s.ById(ctx, "cd6fe092-5a42-4f9f-8a64-2a9a1272ba6d")
	assert.Equal(qrcard.ErrCardNotFound, err)

	card, err := s.Create(ctx, qrcard.CardDraft{
		Name:      "Ann",
		Email:     "ann@example.com",
		UserImage: "https://res.cloudinary.com/demo/image/upload/sample.jpg",
	})
	if !assert.NoError(err) {
		return
	}
	assert.NotEmpty(card.Id)
	assert.False(card.Allowed)

	found, err := s.ById(ctx, card.Id)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(card, found)

	allowed, err := s.SetAllowed(ctx, card.Id, true)
	if !assert.NoError(err) {
		return
	}
	assert.True(allowed.Allowed)
	// other fields untouched
	assert.Equal(card.Name, allowed.Name)
	assert.Equal(card.UserImage, allowed.UserImage)

	_, err = s.SetAllowed(ctx, "a3d3bd35-9f42-45ea-b2e3-91f88f344b2f", true)
	assert.Equal(qrcard.ErrCardNotFound, err)

	all, err := s.All(ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Len(all, 1)

	err = s.Delete(ctx, card.Id)
	assert.NoError(err)
	err = s.Delete(ctx, card.Id)
	assert.Equal(qrcard.ErrCardNotFound, err)

	all, err = s.All(ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Empty(all)
}
