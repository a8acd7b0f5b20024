package db

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/iterator"

	"stadtwache/models"
)

// --- Person Operations ---

// CreatePerson creates a new person registry entry
func (db *FirestoreDB) CreatePerson(ctx context.Context, person *models.Person) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("persons").Doc(person.ID).Set(ctx, person); err != nil {
		return fmt.Errorf("failed to create person: %w", classify(err))
	}
	return nil
}

// GetPerson retrieves a person by ID
func (db *FirestoreDB) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("persons").Doc(personID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", classify(err))
	}

	var person models.Person
	if err := doc.DataTo(&person); err != nil {
		return nil, fmt.Errorf("failed to parse person: %w", err)
	}
	return &person, nil
}

// GetActivePersons retrieves all active person entries, optionally
// filtered by status.
func (db *FirestoreDB) GetActivePersons(ctx context.Context, status string) ([]models.Person, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	query := db.client.Collection("persons").Where("is_active", "==", true)
	if status != "" {
		query = query.Where("status", "==", status)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var persons []models.Person
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate persons: %w", classify(err))
		}

		var person models.Person
		if err := doc.DataTo(&person); err != nil {
			log.Printf("Warning: failed to parse person %s: %v", doc.Ref.ID, err)
			continue
		}
		persons = append(persons, person)
	}
	return persons, nil
}

// UpdatePerson replaces the stored person document
func (db *FirestoreDB) UpdatePerson(ctx context.Context, person *models.Person) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("persons").Doc(person.ID).Set(ctx, person); err != nil {
		return fmt.Errorf("failed to update person: %w", classify(err))
	}
	return nil
}

// DeletePerson marks a person entry inactive rather than removing it, so
// case history stays queryable.
func (db *FirestoreDB) DeletePerson(ctx context.Context, personID string) error {
	person, err := db.GetPerson(ctx, personID)
	if err != nil {
		return err
	}
	person.IsActive = false
	person.Status = "archiviert"
	return db.UpdatePerson(ctx, person)
}
