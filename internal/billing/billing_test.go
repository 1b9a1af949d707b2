package billing

import (
	"fmt"
	"testing"

	"streaming-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.PaymentRecord{},
		&models.Video{},
	))

	return db
}

// newTestUser seeds a user with a provider customer reference.
func newTestUser(t *testing.T, db *gorm.DB, customerID string) *models.User {
	t.Helper()

	user := &models.User{
		Email:              fmt.Sprintf("%s@example.com", uuid.NewString()),
		FullName:           "Test User",
		ExternalCustomerID: customerID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
