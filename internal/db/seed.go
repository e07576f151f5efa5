package db

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users,
// likes (a third of them mutual), visits and a few blocks.
//
// Compatible with both MySQL and SQLite. Reputation scores are left at zero;
// the caller recomputes them through the reputation updater.
func SeedTestData(db *gorm.DB, users int) ([]User, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"notifications", "messages", "visits", "unlikes", "blocks", "likes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seeded := make([]User, 0, users)
	for i := 1; i <= users; i++ {
		gender := "male"
		if i > users/2 {
			gender = "female"
		}
		u := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Gender:       gender,
			Active:       true,
		}
		// every 5th user has no picture and cannot like anyone
		if i%5 != 0 {
			u.ProfileImage = fmt.Sprintf("/uploads/user%d.jpg", i)
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		seeded = append(seeded, u)
	}

	ignore := clause.OnConflict{DoNothing: true}
	for n, liker := range seeded {
		if liker.ProfileImage == "" {
			continue
		}
		for j := 0; j < 4; j++ {
			liked := seeded[r.Intn(len(seeded))]
			if liked.ID == liker.ID || liked.Gender == liker.Gender {
				continue
			}
			if err := db.Clauses(ignore).Create(&Like{LikerID: liker.ID, LikedID: liked.ID}).Error; err != nil {
				return nil, fmt.Errorf("failed to seed like: %w", err)
			}
			// guarantee a match every 3rd user
			if n%3 == 0 && liked.ProfileImage != "" {
				if err := db.Clauses(ignore).Create(&Like{LikerID: liked.ID, LikedID: liker.ID}).Error; err != nil {
					return nil, fmt.Errorf("failed to seed like: %w", err)
				}
			}
		}
		visited := seeded[r.Intn(len(seeded))]
		if visited.ID != liker.ID {
			if err := db.Create(&Visit{VisitorID: liker.ID, VisitedID: visited.ID}).Error; err != nil {
				return nil, fmt.Errorf("failed to seed visit: %w", err)
			}
		}
	}

	return seeded, nil
}
