package service

import "weshop/internal/domain/entity"

// Pure authorization predicates for the order chat. They decide only; the
// usecase layer translates a deny into Forbidden or NotFound depending on
// whether existence may be revealed to the caller.

// ResolveOrderParticipants projects the order graph onto the two identities
// allowed in its conversation: the buyer and the owner of the shop selling
// the product. Returns ok=false when the graph is not fully loaded.
func ResolveOrderParticipants(order *entity.Order) (buyerID, sellerID uint, ok bool) {
	if order == nil || order.Product == nil || order.Product.Shop == nil {
		return 0, 0, false
	}
	return order.BuyerID, order.Product.Shop.OwnerID, true
}

// CanStartConversation allows only the order's buyer or the selling shop's
// owner to open the order chat.
func CanStartConversation(userID uint, order *entity.Order) (bool, string) {
	buyerID, sellerID, ok := ResolveOrderParticipants(order)
	if !ok {
		return false, "order is missing product or shop information"
	}
	if userID == buyerID || userID == sellerID {
		return true, ""
	}
	return false, "only the buyer or the shop owner may start this conversation"
}

// CanAccessConversation is the membership check shared by read, send and
// live-connect: the user must be one of the conversation's participants.
func CanAccessConversation(userID uint, conversation *entity.Conversation) (bool, string) {
	if conversation == nil {
		return false, "conversation does not exist"
	}
	if conversation.HasParticipant(userID) {
		return true, ""
	}
	return false, "user is not a participant in this conversation"
}
