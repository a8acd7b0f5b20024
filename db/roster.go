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

// --- District Operations ---

// CreateDistrict creates a new patrol district
func (db *FirestoreDB) CreateDistrict(ctx context.Context, district *models.District) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("districts").Doc(district.ID).Set(ctx, district); err != nil {
		return fmt.Errorf("failed to create district: %w", classify(err))
	}
	return nil
}

// GetDistrict retrieves a district by ID
func (db *FirestoreDB) GetDistrict(ctx context.Context, districtID string) (*models.District, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("districts").Doc(districtID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get district: %w", classify(err))
	}

	var district models.District
	if err := doc.DataTo(&district); err != nil {
		return nil, fmt.Errorf("failed to parse district: %w", err)
	}
	return &district, nil
}

// GetAllDistricts retrieves all districts
func (db *FirestoreDB) GetAllDistricts(ctx context.Context) ([]models.District, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("districts").Documents(ctx)
	defer iter.Stop()

	var districts []models.District
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate districts: %w", classify(err))
		}

		var district models.District
		if err := doc.DataTo(&district); err != nil {
			log.Printf("Warning: failed to parse district %s: %v", doc.Ref.ID, err)
			continue
		}
		districts = append(districts, district)
	}
	return districts, nil
}

// DeleteDistrict deletes a district
func (db *FirestoreDB) DeleteDistrict(ctx context.Context, districtID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("districts").Doc(districtID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete district: %w", classify(err))
	}
	return nil
}

// --- Team Operations ---

// CreateTeam creates a new patrol team
func (db *FirestoreDB) CreateTeam(ctx context.Context, team *models.Team) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("teams").Doc(team.ID).Set(ctx, team); err != nil {
		return fmt.Errorf("failed to create team: %w", classify(err))
	}
	return nil
}

// GetTeam retrieves a team by ID
func (db *FirestoreDB) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("teams").Doc(teamID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", classify(err))
	}

	var team models.Team
	if err := doc.DataTo(&team); err != nil {
		return nil, fmt.Errorf("failed to parse team: %w", err)
	}
	return &team, nil
}

// GetAllTeams retrieves all teams
func (db *FirestoreDB) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("teams").Documents(ctx)
	defer iter.Stop()

	var teams []models.Team
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate teams: %w", classify(err))
		}

		var team models.Team
		if err := doc.DataTo(&team); err != nil {
			log.Printf("Warning: failed to parse team %s: %v", doc.Ref.ID, err)
			continue
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// UpdateTeam replaces the stored team document
func (db *FirestoreDB) UpdateTeam(ctx context.Context, team *models.Team) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("teams").Doc(team.ID).Set(ctx, team); err != nil {
		return fmt.Errorf("failed to update team: %w", classify(err))
	}
	return nil
}

// DeleteTeam deletes a team
func (db *FirestoreDB) DeleteTeam(ctx context.Context, teamID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("teams").Doc(teamID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete team: %w", classify(err))
	}
	return nil
}

// --- Vacation Operations ---

// CreateVacation creates a vacation request
func (db *FirestoreDB) CreateVacation(ctx context.Context, vacation *models.Vacation) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("vacations").Doc(vacation.ID).Set(ctx, vacation); err != nil {
		return fmt.Errorf("failed to create vacation: %w", classify(err))
	}
	return nil
}

// GetVacation retrieves a vacation request by ID
func (db *FirestoreDB) GetVacation(ctx context.Context, vacationID string) (*models.Vacation, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("vacations").Doc(vacationID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get vacation: %w", classify(err))
	}

	var vacation models.Vacation
	if err := doc.DataTo(&vacation); err != nil {
		return nil, fmt.Errorf("failed to parse vacation: %w", err)
	}
	return &vacation, nil
}

// GetVacations retrieves vacation requests, optionally restricted to one
// user, newest first.
func (db *FirestoreDB) GetVacations(ctx context.Context, userID string) ([]models.Vacation, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var query firestore.Query = db.client.Collection("vacations").Query
	if userID != "" {
		query = query.Where("user_id", "==", userID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var vacations []models.Vacation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate vacations: %w", classify(err))
		}

		var vacation models.Vacation
		if err := doc.DataTo(&vacation); err != nil {
			log.Printf("Warning: failed to parse vacation %s: %v", doc.Ref.ID, err)
			continue
		}
		vacations = append(vacations, vacation)
	}

	sort.Slice(vacations, func(i, j int) bool {
		return vacations[i].CreatedAt.After(vacations[j].CreatedAt)
	})
	return vacations, nil
}

// UpdateVacation replaces the stored vacation document
func (db *FirestoreDB) UpdateVacation(ctx context.Context, vacation *models.Vacation) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("vacations").Doc(vacation.ID).Set(ctx, vacation); err != nil {
		return fmt.Errorf("failed to update vacation: %w", classify(err))
	}
	return nil
}

// DeleteVacation removes a vacation request
func (db *FirestoreDB) DeleteVacation(ctx context.Context, vacationID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("vacations").Doc(vacationID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete vacation: %w", classify(err))
	}
	return nil
}

// --- Sick Leave Operations ---

// CreateSickLeave creates a sick leave notice
func (db *FirestoreDB) CreateSickLeave(ctx context.Context, leave *models.SickLeave) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("sick_leaves").Doc(leave.ID).Set(ctx, leave); err != nil {
		return fmt.Errorf("failed to create sick leave: %w", classify(err))
	}
	return nil
}

// GetSickLeave retrieves a sick leave notice by ID
func (db *FirestoreDB) GetSickLeave(ctx context.Context, leaveID string) (*models.SickLeave, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("sick_leaves").Doc(leaveID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sick leave: %w", classify(err))
	}

	var leave models.SickLeave
	if err := doc.DataTo(&leave); err != nil {
		return nil, fmt.Errorf("failed to parse sick leave: %w", err)
	}
	return &leave, nil
}

// GetSickLeaves retrieves sick leave notices, optionally restricted to one
// user, newest first.
func (db *FirestoreDB) GetSickLeaves(ctx context.Context, userID string) ([]models.SickLeave, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var query firestore.Query = db.client.Collection("sick_leaves").Query
	if userID != "" {
		query = query.Where("user_id", "==", userID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var leaves []models.SickLeave
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sick leaves: %w", classify(err))
		}

		var leave models.SickLeave
		if err := doc.DataTo(&leave); err != nil {
			log.Printf("Warning: failed to parse sick leave %s: %v", doc.Ref.ID, err)
			continue
		}
		leaves = append(leaves, leave)
	}

	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].CreatedAt.After(leaves[j].CreatedAt)
	})
	return leaves, nil
}

// UpdateSickLeave replaces the stored sick leave document
func (db *FirestoreDB) UpdateSickLeave(ctx context.Context, leave *models.SickLeave) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("sick_leaves").Doc(leave.ID).Set(ctx, leave); err != nil {
		return fmt.Errorf("failed to update sick leave: %w", classify(err))
	}
	return nil
}

// DeleteSickLeave removes a sick leave notice
func (db *FirestoreDB) DeleteSickLeave(ctx context.Context, leaveID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("sick_leaves").Doc(leaveID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete sick leave: %w", classify(err))
	}
	return nil
}

// --- Check-In Operations ---

// CreateCheckIn stores a duty check-in
func (db *FirestoreDB) CreateCheckIn(ctx context.Context, checkIn *models.CheckIn) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("check_ins").Doc(checkIn.ID).Set(ctx, checkIn); err != nil {
		return fmt.Errorf("failed to create check-in: %w", classify(err))
	}
	return nil
}

// GetCheckInsByUser retrieves a user's check-ins, newest first.
func (db *FirestoreDB) GetCheckInsByUser(ctx context.Context, userID string, limit int) ([]models.CheckIn, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("check_ins").
		Where("user_id", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	var checkIns []models.CheckIn
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate check-ins: %w", classify(err))
		}

		var checkIn models.CheckIn
		if err := doc.DataTo(&checkIn); err != nil {
			log.Printf("Warning: failed to parse check-in %s: %v", doc.Ref.ID, err)
			continue
		}
		checkIns = append(checkIns, checkIn)
	}

	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Timestamp.After(checkIns[j].Timestamp)
	})
	if limit > 0 && len(checkIns) > limit {
		checkIns = checkIns[:limit]
	}
	return checkIns, nil
}

// --- Emergency Operations ---

// CreateEmergency stores an emergency broadcast
func (db *FirestoreDB) CreateEmergency(ctx context.Context, alert *models.EmergencyBroadcast) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("emergencies").Doc(alert.ID).Set(ctx, alert); err != nil {
		return fmt.Errorf("failed to create emergency: %w", classify(err))
	}
	return nil
}

// GetRecentEmergencies retrieves broadcasts newer than the cutoff, newest
// first.
func (db *FirestoreDB) GetRecentEmergencies(ctx context.Context, since time.Time) ([]models.EmergencyBroadcast, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("emergencies").
		Where("timestamp", ">", since).
		Documents(ctx)
	defer iter.Stop()

	var alerts []models.EmergencyBroadcast
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate emergencies: %w", classify(err))
		}

		var alert models.EmergencyBroadcast
		if err := doc.DataTo(&alert); err != nil {
			log.Printf("Warning: failed to parse emergency %s: %v", doc.Ref.ID, err)
			continue
		}
		alerts = append(alerts, alert)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	return alerts, nil
}
