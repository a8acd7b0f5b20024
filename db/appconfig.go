package db

import (
	"context"
	"errors"
	"fmt"

	"stadtwache/models"
)

// --- App Configuration ---

const appConfigDoc = "app-config"

// GetAppConfiguration retrieves the branding singleton, creating it with
// defaults on first access.
func (db *FirestoreDB) GetAppConfiguration(ctx context.Context) (*models.AppConfiguration, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("app_config").Doc(appConfigDoc).Get(ctx)
	if err != nil {
		if errors.Is(classify(err), ErrNotFound) {
			cfg := models.DefaultAppConfiguration()
			if err := db.SetAppConfiguration(ctx, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to get app configuration: %w", classify(err))
	}

	var cfg models.AppConfiguration
	if err := doc.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app configuration: %w", err)
	}
	return &cfg, nil
}

// SetAppConfiguration replaces the branding singleton
func (db *FirestoreDB) SetAppConfiguration(ctx context.Context, cfg *models.AppConfiguration) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	cfg.ID = appConfigDoc
	if _, err := db.client.Collection("app_config").Doc(appConfigDoc).Set(ctx, cfg); err != nil {
		return fmt.Errorf("failed to store app configuration: %w", classify(err))
	}
	return nil
}
