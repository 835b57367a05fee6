package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// SubscriptionRepository defines data access for channel subscriptions.
type SubscriptionRepository interface {
	// Toggle flips the subscription state for (subscriber, channel) and
	// reports the resulting state.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error)
}
