// Package db wraps Firestore behind typed collection operations. Every
// method takes the caller's context and runs under a bounded timeout so a
// slow backend surfaces as ErrUnavailable instead of a hung request.
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"stadtwache/models"
)

const opTimeout = 10 * time.Second

// FirestoreDB wraps the Firestore client
type FirestoreDB struct {
	client *firestore.Client
}

// NewFirestoreDB initializes a new Firestore client
func NewFirestoreDB(ctx context.Context, projectID, credentialsPath string) (*FirestoreDB, error) {
	config := &firebase.Config{ProjectID: projectID}

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, config, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	log.Printf("✅ Connected to Firestore project: %s", projectID)

	return &FirestoreDB{client: client}, nil
}

// Close closes the Firestore client
func (db *FirestoreDB) Close() error {
	return db.client.Close()
}

func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// --- User Operations ---

// CreateUser creates a new user. The email must not already be taken.
func (db *FirestoreDB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	existing, err := db.GetUserByEmail(ctx, user.Email)
	if err != nil && err != ErrNotFound {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: email %s", ErrConflict, user.Email)
	}

	if _, err := db.client.Collection("users").Doc(user.ID).Set(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *FirestoreDB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", classify(err))
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (db *FirestoreDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("users").
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", classify(err))
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// GetAllUsers retrieves all users
func (db *FirestoreDB) GetAllUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("users").Documents(ctx)
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", classify(err))
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Warning: failed to parse user %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUsersByRole retrieves all users holding one of the given roles
func (db *FirestoreDB) GetUsersByRole(ctx context.Context, roles ...models.UserRole) ([]models.User, error) {
	all, err := db.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	var users []models.User
	for _, u := range all {
		for _, r := range roles {
			if u.Role == r {
				users = append(users, u)
				break
			}
		}
	}
	return users, nil
}

// UpdateUser replaces the stored user document
func (db *FirestoreDB) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("users").Doc(user.ID).Set(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", classify(err))
	}
	return nil
}

// DeleteUser deletes a user
func (db *FirestoreDB) DeleteUser(ctx context.Context, userID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("users").Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", classify(err))
	}
	return nil
}

// CountUsers reports how many user documents exist
func (db *FirestoreDB) CountUsers(ctx context.Context) (int, error) {
	users, err := db.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
