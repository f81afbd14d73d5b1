package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/domain"
)

// SeedTestData resets the database and populates it with demo accounts,
// profiles, swipe edges and a few messages.
//
// Behavior:
//  1. Clears existing data in all four tables.
//  2. Creates 12 students spread across majors with varied interests.
//  3. Generates swipe edges with a handful of guaranteed mutual likes.
//  4. Drops a few messages between the mutual pairs.
//
// Every account gets the password "password".
func SeedTestData(gdb *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"messages", "edges", "profiles", "accounts"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	majors := []domain.Major{
		domain.MajorScience, domain.MajorArts, domain.MajorEngineering,
		domain.MajorBusiness, domain.MajorMedicine, domain.MajorLaw,
	}
	interestPool := []string{
		string(domain.InterestHiking), string(domain.InterestMusic),
		string(domain.InterestPainting), string(domain.InterestSkiing),
		string(domain.InterestGaming), string(domain.InterestReading),
		string(domain.InterestCooking), string(domain.InterestPhotography),
	}

	ids := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		id := uuid.NewString()
		email := fmt.Sprintf("student%d@campus.edu", i)

		account := Account{
			ID:           id,
			Email:        email,
			PasswordHash: string(hash),
			Confirmed:    true,
		}
		if err := gdb.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}

		major := string(majors[i%len(majors)])
		interests := make([]string, 0, 3)
		for j := 0; j < 3; j++ {
			interests = append(interests, interestPool[(i+j*2)%len(interestPool)])
		}

		profile := Profile{
			ID:           id,
			Email:        email,
			DisplayName:  fmt.Sprintf("Student %d", i),
			Major:        &major,
			Bio:          "Hi, I'm new here!",
			Interests:    interests,
			Languages:    []string{string(domain.LanguageEnglish)},
			HomeRegion:   "Campus",
			IsSearchable: true,
			Settings:     domain.DefaultNotificationSettings(),
		}
		if err := gdb.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		ids = append(ids, id)
	}
	log.Printf("Seeded %d students.", len(ids))

	// Swipes: each student decides on ~5 others, ~70% likes. Every 4th
	// decision is made mutual so connections and chats exist out of the box.
	counter := 0
	var mutualPairs [][2]string
	for _, actor := range ids {
		for j := 0; j < 5; j++ {
			target := ids[r.Intn(len(ids))]
			if target == actor {
				continue
			}

			action := ActionPass
			if r.Intn(100) < 70 {
				action = ActionLike
			}
			if counter%4 == 0 {
				action = ActionLike
				if err := gdb.Create(&Edge{ActorID: target, TargetID: actor, Action: ActionLike}).Error; err != nil {
					return fmt.Errorf("failed to seed edge: %w", err)
				}
				mutualPairs = append(mutualPairs, [2]string{actor, target})
			}

			if err := gdb.Create(&Edge{ActorID: actor, TargetID: target, Action: action}).Error; err != nil {
				return fmt.Errorf("failed to seed edge: %w", err)
			}
			counter++
		}
	}

	for _, pair := range mutualPairs {
		msg := Message{
			ID:         uuid.NewString(),
			SenderID:   pair[0],
			ReceiverID: pair[1],
			Content:    "Hey! We matched 🎉",
			Kind:       "text",
		}
		if err := gdb.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}
	}

	return nil
}

// SeedMinimalTestData inserts a small deterministic dataset used by tests
// and local experiments.
//
// Dataset:
//   - alice (Science, {Hiking, Music})
//   - bob   (Arts,    {Hiking, Painting})
//   - carol (Arts,    {Hiking, Music, Skiing})
//   - dave  (Science, {Hiking})
//
// Edges:
//   - alice → bob  = like
//   - bob   → alice = like (mutual)
//   - carol → alice = like (pending for alice)
//   - alice → dave  = pass
func SeedMinimalTestData(gdb *gorm.DB) error {
	for _, table := range []string{"messages", "edges", "profiles", "accounts"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	science := string(domain.MajorScience)
	arts := string(domain.MajorArts)

	profiles := []Profile{
		{ID: "alice", Email: "alice@campus.edu", DisplayName: "Alice", Major: &science,
			Interests: []string{"Hiking", "Music"}, Languages: []string{"English"},
			IsSearchable: true, Settings: domain.DefaultNotificationSettings()},
		{ID: "bob", Email: "bob@campus.edu", DisplayName: "Bob", Major: &arts,
			Interests: []string{"Hiking", "Painting"}, Languages: []string{"English"},
			IsSearchable: true, Settings: domain.DefaultNotificationSettings()},
		{ID: "carol", Email: "carol@campus.edu", DisplayName: "Carol", Major: &arts,
			Interests: []string{"Hiking", "Music", "Skiing"}, Languages: []string{"English"},
			IsSearchable: true, Settings: domain.DefaultNotificationSettings()},
		{ID: "dave", Email: "dave@campus.edu", DisplayName: "Dave", Major: &science,
			Interests: []string{"Hiking"}, Languages: []string{"English"},
			IsSearchable: true, Settings: domain.DefaultNotificationSettings()},
	}
	if err := gdb.Create(&profiles).Error; err != nil {
		return err
	}

	edges := []Edge{
		{ActorID: "alice", TargetID: "bob", Action: ActionLike},
		{ActorID: "bob", TargetID: "alice", Action: ActionLike},
		{ActorID: "carol", TargetID: "alice", Action: ActionLike},
		{ActorID: "alice", TargetID: "dave", Action: ActionPass},
	}
	return gdb.Create(&edges).Error
}
