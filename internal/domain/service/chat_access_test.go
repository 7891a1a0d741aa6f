package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"weshop/internal/domain/entity"
)

func orderWithParties(buyerID, ownerID uint) *entity.Order {
	return &entity.Order{
		ID:      1,
		BuyerID: buyerID,
		Product: &entity.Product{
			ID:   7,
			Shop: &entity.Shop{ID: 3, OwnerID: ownerID},
		},
	}
}

func TestResolveOrderParticipants(t *testing.T) {
	buyerID, sellerID, ok := ResolveOrderParticipants(orderWithParties(10, 20))
	assert.True(t, ok)
	assert.Equal(t, uint(10), buyerID)
	assert.Equal(t, uint(20), sellerID)
}

func TestResolveOrderParticipantsIncompleteGraph(t *testing.T) {
	_, _, ok := ResolveOrderParticipants(nil)
	assert.False(t, ok)

	_, _, ok = ResolveOrderParticipants(&entity.Order{BuyerID: 10})
	assert.False(t, ok)

	_, _, ok = ResolveOrderParticipants(&entity.Order{BuyerID: 10, Product: &entity.Product{}})
	assert.False(t, ok)
}

func TestCanStartConversation(t *testing.T) {
	order := orderWithParties(10, 20)

	allowed, _ := CanStartConversation(10, order)
	assert.True(t, allowed, "buyer may start")

	allowed, _ = CanStartConversation(20, order)
	assert.True(t, allowed, "shop owner may start")

	allowed, reason := CanStartConversation(33, order)
	assert.False(t, allowed, "outsider may not start")
	assert.NotEmpty(t, reason)
}

func TestCanAccessConversation(t *testing.T) {
	conversation := &entity.Conversation{
		ID:           1,
		Participants: []entity.User{{ID: 10}, {ID: 20}},
	}

	allowed, _ := CanAccessConversation(10, conversation)
	assert.True(t, allowed)

	allowed, _ = CanAccessConversation(20, conversation)
	assert.True(t, allowed)

	allowed, reason := CanAccessConversation(33, conversation)
	assert.False(t, allowed)
	assert.NotEmpty(t, reason)

	allowed, _ = CanAccessConversation(10, nil)
	assert.False(t, allowed)
}
