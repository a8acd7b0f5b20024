package db

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"stadtwache/models"
)

// --- Audit Log ---

// RecordAudit appends an administrative action to the audit log. Audit
// writes are best-effort: a failure is logged but never fails the request
// that triggered it.
func (db *FirestoreDB) RecordAudit(ctx context.Context, userID, action, details string) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	event := &models.AuditEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	if _, err := db.client.Collection("audit_log").Doc(event.ID).Set(ctx, event); err != nil {
		log.Printf("⚠️ Failed to record audit event %s: %v", action, err)
	}
}
