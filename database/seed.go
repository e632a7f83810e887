package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

const demoUsers = 5

// SeedDemoUsers creates user_1..user_5 (keys api_key_1..api_key_5), makes each
// user_N follow user_N-1, and adds the "Test" user with key "test".
// Running it again changes nothing.
func SeedDemoUsers(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[int]uint, demoUsers)
		for i := 1; i <= demoUsers; i++ {
			u, err := seedUser(tx, fmt.Sprintf("user_%d", i), fmt.Sprintf("api_key_%d", i))
			if err != nil {
				return err
			}
			ids[i] = u.ID
		}

		for i := 2; i <= demoUsers; i++ {
			edge := models.Follow{FollowerID: ids[i], FollowingID: ids[i-1]}
			err := tx.Omit(clause.Associations).
				Where("follower_id = ? AND following_id = ?", edge.FollowerID, edge.FollowingID).
				FirstOrCreate(&edge).Error
			if err != nil {
				return fmt.Errorf("failed to seed follow %d->%d: %w", edge.FollowerID, edge.FollowingID, err)
			}
		}

		_, err := seedUser(tx, "Test", "test")
		return err
	})
}

func seedUser(tx *gorm.DB, name, apiKey string) (models.User, error) {
	user := models.User{Name: name, APIKey: apiKey}
	if err := tx.Where("api_key = ?", apiKey).FirstOrCreate(&user).Error; err != nil {
		return user, fmt.Errorf("failed to seed user %s: %w", name, err)
	}
	return user, nil
}
