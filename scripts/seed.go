package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"stadtwache/auth"
	"stadtwache/config"
	"stadtwache/db"
	"stadtwache/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	log.Println("🌱 Starting database seeding...")

	if err := seedDistricts(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed districts: %v", err)
	}
	if err := seedTeams(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed teams: %v", err)
	}
	if err := seedUsers(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedDistricts(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	now := time.Now().UTC()
	districts := []models.District{
		{
			ID:              "district-innenstadt",
			Name:            "Innenstadt",
			AreaDescription: "Fußgängerzone, Rathaus und Bahnhofsviertel",
			Coordinates:     &models.Location{Lat: 51.2879, Lng: 7.2954},
			CreatedAt:       now,
		},
		{
			ID:              "district-nord",
			Name:            "Nordbezirk",
			AreaDescription: "Wohngebiete nördlich der Bahnlinie",
			Coordinates:     &models.Location{Lat: 51.2951, Lng: 7.2921},
			CreatedAt:       now,
		},
		{
			ID:              "district-sued",
			Name:            "Südbezirk",
			AreaDescription: "Gewerbegebiet und Sportanlagen im Süden",
			Coordinates:     &models.Location{Lat: 51.2801, Lng: 7.3002},
			CreatedAt:       now,
		},
	}

	for _, district := range districts {
		d := district
		if err := firestoreDB.CreateDistrict(ctx, &d); err != nil {
			return err
		}
		log.Printf("  Created district: %s", d.Name)
	}
	return nil
}

func seedTeams(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	now := time.Now().UTC()
	teams := []models.Team{
		{
			ID:         "team-alpha",
			Name:       "Streife Alpha",
			DistrictID: "district-innenstadt",
			Members:    []string{},
			MaxMembers: 6,
			Status:     models.TeamReady,
			CreatedAt:  now,
		},
		{
			ID:         "team-bravo",
			Name:       "Streife Bravo",
			DistrictID: "district-nord",
			Members:    []string{},
			MaxMembers: 6,
			Status:     models.TeamReady,
			CreatedAt:  now,
		},
	}

	for _, team := range teams {
		t := team
		if err := firestoreDB.CreateTeam(ctx, &t); err != nil {
			return err
		}
		log.Printf("  Created team: %s", t.Name)
	}
	return nil
}

func seedUsers(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	hash, err := auth.HashPassword("admin123!")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:              "admin-1",
		Email:           "admin@stadtwache.local",
		Username:        "admin",
		Role:            models.RoleAdmin,
		Status:          models.StatusOnDuty,
		IsActive:        true,
		CheckInInterval: 30,
		HashedPassword:  hash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := firestoreDB.CreateUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("  Created admin user: %s", admin.Email)
	log.Println("  ⚠️  Change the default password after first login")
	return nil
}
