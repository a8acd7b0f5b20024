package db

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"stadtwache/models"
)

// --- Message Operations ---

// CreateMessage stores a chat message
func (db *FirestoreDB) CreateMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("messages").Doc(msg.ID).Set(ctx, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", classify(err))
	}
	return nil
}

// GetMessage retrieves a message by ID
func (db *FirestoreDB) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", classify(err))
	}

	var msg models.Message
	if err := doc.DataTo(&msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// GetChannelMessages retrieves the most recent messages of a channel in
// chronological order.
func (db *FirestoreDB) GetChannelMessages(ctx context.Context, channel string, limit int) ([]models.Message, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("messages").
		Where("channel", "==", channel).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	msgs, err := collectMessages(iter)
	if err != nil {
		return nil, err
	}
	sortMessagesAsc(msgs)
	return msgs, nil
}

// GetPrivateMessages retrieves the conversation between two users in
// chronological order.
func (db *FirestoreDB) GetPrivateMessages(ctx context.Context, userA, userB string, limit int) ([]models.Message, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	// Firestore cannot express (sender=A AND recipient=B) OR the reverse
	// in one query, so both directions are fetched and merged.
	var msgs []models.Message
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		iter := db.client.Collection("messages").
			Where("sender_id", "==", pair[0]).
			Where("recipient_id", "==", pair[1]).
			Documents(ctx)
		part, err := collectMessages(iter)
		iter.Stop()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, part...)
	}

	sortMessagesAsc(msgs)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// DeleteMessage deletes a message
func (db *FirestoreDB) DeleteMessage(ctx context.Context, messageID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("messages").Doc(messageID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete message: %w", classify(err))
	}
	return nil
}

func collectMessages(iter *firestore.DocumentIterator) ([]models.Message, error) {
	var msgs []models.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate messages: %w", classify(err))
		}

		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			log.Printf("Warning: failed to parse message %s: %v", doc.Ref.ID, err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func sortMessagesAsc(msgs []models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

// --- Location Operations ---

// CreateLocation stores a live location ping
func (db *FirestoreDB) CreateLocation(ctx context.Context, loc *models.LocationUpdate) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, _, err := db.client.Collection("locations").Add(ctx, loc); err != nil {
		return fmt.Errorf("failed to create location: %w", classify(err))
	}
	return nil
}

// GetRecentLocations retrieves location pings newer than the cutoff,
// keeping only the freshest ping per user.
func (db *FirestoreDB) GetRecentLocations(ctx context.Context, since time.Time) ([]models.LocationUpdate, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("locations").
		Where("timestamp", ">", since).
		Documents(ctx)
	defer iter.Stop()

	latest := make(map[string]models.LocationUpdate)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate locations: %w", classify(err))
		}

		var loc models.LocationUpdate
		if err := doc.DataTo(&loc); err != nil {
			log.Printf("Warning: failed to parse location %s: %v", doc.Ref.ID, err)
			continue
		}
		if prev, ok := latest[loc.UserID]; !ok || loc.Timestamp.After(prev.Timestamp) {
			latest[loc.UserID] = loc
		}
	}

	locations := make([]models.LocationUpdate, 0, len(latest))
	for _, loc := range latest {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Timestamp.After(locations[j].Timestamp)
	})
	return locations, nil
}
