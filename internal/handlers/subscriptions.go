package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

type subscriptionResult struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == user.ID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to toggle subscription")
		return
	}

	message := "unsubscribed from channel"
	if subscribed {
		message = "subscribed to channel"
	}
	respondData(ctx, w, http.StatusOK, subscriptionResult{Subscribed: subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/u/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to fetch subscribers")
		return
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to fetch subscribers")
		return
	}
	if subscribers == nil {
		subscribers = []models.OwnerSummary{}
	}

	respondData(ctx, w, http.StatusOK, subscribers, "subscribers fetched successfully")
}

// SubscribedChannels handles GET /api/v1/subscriptions/c/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	subscriberID := r.PathValue("subscriberId")
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch subscribed channels")
		return
	}

	channels, err := h.Subscriptions.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch subscribed channels")
		return
	}
	if channels == nil {
		channels = []models.OwnerSummary{}
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
