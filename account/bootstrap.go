package account

import (
	"context"
	"os"

	"marketflow/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// DefaultSecurityConfiguration creates the initial super admin account
// when the users table is empty. The password comes from
// INITIAL_ADMIN_PASSWORD, falling back to admin123.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	admin := User{}
	err := db.Where(&User{ID: 1}).First(&admin).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	initialAdminPassword := os.Getenv("INITIAL_ADMIN_PASSWORD")
	if initialAdminPassword == "" {
		initialAdminPassword = "admin123"
	}
	return db.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword),
		Role: "SUPER_ADMIN", CreateTime: types.CurrentTimestamp()}).Error
}
