package db

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/iterator"

	"stadtwache/models"
)

// --- Incident Operations ---

// CreateIncident creates a new incident
func (db *FirestoreDB) CreateIncident(ctx context.Context, incident *models.Incident) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("incidents").Doc(incident.ID).Set(ctx, incident); err != nil {
		return fmt.Errorf("failed to create incident: %w", classify(err))
	}
	return nil
}

// GetIncident retrieves an incident by ID
func (db *FirestoreDB) GetIncident(ctx context.Context, incidentID string) (*models.Incident, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("incidents").Doc(incidentID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", classify(err))
	}

	var incident models.Incident
	if err := doc.DataTo(&incident); err != nil {
		return nil, fmt.Errorf("failed to parse incident: %w", err)
	}
	return &incident, nil
}

// GetAllIncidents retrieves all incidents
func (db *FirestoreDB) GetAllIncidents(ctx context.Context) ([]models.Incident, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("incidents").Documents(ctx)
	defer iter.Stop()

	var incidents []models.Incident
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate incidents: %w", classify(err))
		}

		var incident models.Incident
		if err := doc.DataTo(&incident); err != nil {
			log.Printf("Warning: failed to parse incident %s: %v", doc.Ref.ID, err)
			continue
		}
		incidents = append(incidents, incident)
	}
	return incidents, nil
}

// GetIncidentsByAssignee retrieves incidents assigned to a user
func (db *FirestoreDB) GetIncidentsByAssignee(ctx context.Context, userID string) ([]models.Incident, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("incidents").
		Where("assigned_to", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	var incidents []models.Incident
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate incidents: %w", classify(err))
		}

		var incident models.Incident
		if err := doc.DataTo(&incident); err != nil {
			log.Printf("Warning: failed to parse incident %s: %v", doc.Ref.ID, err)
			continue
		}
		incidents = append(incidents, incident)
	}
	return incidents, nil
}

// UpdateIncident replaces the stored incident document
func (db *FirestoreDB) UpdateIncident(ctx context.Context, incident *models.Incident) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("incidents").Doc(incident.ID).Set(ctx, incident); err != nil {
		return fmt.Errorf("failed to update incident: %w", classify(err))
	}
	return nil
}

// DeleteIncident deletes an incident
func (db *FirestoreDB) DeleteIncident(ctx context.Context, incidentID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("incidents").Doc(incidentID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete incident: %w", classify(err))
	}
	return nil
}
