package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB starts a throwaway postgres container and migrates the
// schema into it. Tests are skipped when docker is unavailable.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=giftsync_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	_ = resource.Expire(120)

	dsn := fmt.Sprintf(
		"host=localhost port=%v user=test password=test dbname=giftsync_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	var db *gorm.DB
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}

		return sqlDB.Ping()
	})
	require.NoError(t, err)

	require.NoError(t, InitTables(db))

	return db
}

func TestUserDAO(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userDAO := NewUserDAO(db)

	owner, err := userDAO.Insert(ctx, User{Email: "owner@example.com", Password: "x", Name: "Owner"})
	require.NoError(t, err)

	ada, err := userDAO.Insert(ctx, User{Email: "ada@example.com", Password: "x", Name: "Ada"})
	require.NoError(t, err)

	ben, err := userDAO.Insert(ctx, User{Email: "ben@example.com", Password: "x", Name: "Ben"})
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := userDAO.Insert(ctx, User{Email: "ada@example.com", Password: "x", Name: "Ada Again"})
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})

	t.Run("find by id and email", func(t *testing.T) {
		found, err := userDAO.FindByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", found.Name)

		found, err = userDAO.FindByEmail(ctx, "ben@example.com")
		require.NoError(t, err)
		assert.Equal(t, ben.ID, found.ID)

		_, err = userDAO.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("roster", func(t *testing.T) {
		require.NoError(t, userDAO.LinkUser(ctx, owner.ID, ben.ID))
		require.NoError(t, userDAO.LinkUser(ctx, owner.ID, ada.ID))
		// Re-linking must be a no-op.
		require.NoError(t, userDAO.LinkUser(ctx, owner.ID, ada.ID))

		roster, err := userDAO.FindRoster(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, roster, 2)
		assert.Equal(t, "Ada", roster[0].Name, "roster is ordered by name")
		assert.Equal(t, "Ben", roster[1].Name)
	})
}

func TestContributionDAO(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	contributionDAO := NewContributionDAO(db)

	item := Item{GetterID: 50, Title: "Telescope", AmountWanted: 3, MaxAmountWanted: 5}
	require.NoError(t, db.Create(&item).Error)

	t.Run("find item", func(t *testing.T) {
		found, err := contributionDAO.FindItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Telescope", found.Title)

		_, err = contributionDAO.FindItemByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("upsert getting creates then updates", func(t *testing.T) {
		err := contributionDAO.UpsertGetting(ctx, []Contribution{
			{ItemID: item.ID, GiverID: 1, NumberGetting: 2},
			{ItemID: item.ID, GiverID: 2, NumberGetting: 1},
		})
		require.NoError(t, err)

		err = contributionDAO.UpsertGetting(ctx, []Contribution{
			{ItemID: item.ID, GiverID: 1, NumberGetting: 3},
		})
		require.NoError(t, err)

		contributions, err := contributionDAO.FindByItemID(ctx, item.ID)
		require.NoError(t, err)
		require.Len(t, contributions, 2)
		assert.Equal(t, 3, contributions[0].NumberGetting)
		assert.Equal(t, 1, contributions[1].NumberGetting)
	})

	t.Run("upsert getting keeps proposal quantity", func(t *testing.T) {
		proposal := Contribution{ItemID: item.ID, GiverID: 3, NumberGetting: 1, Proposal: true}
		require.NoError(t, db.Create(&proposal).Error)

		err := contributionDAO.UpsertGetting(ctx, []Contribution{
			{ItemID: item.ID, GiverID: 3, NumberGetting: 5},
		})
		require.NoError(t, err)

		var found Contribution
		require.NoError(t, db.Where("item_id = ? AND giver_id = ?", item.ID, 3).First(&found).Error)
		assert.Equal(t, 1, found.NumberGetting)
	})

	t.Run("upsert go-in-on", func(t *testing.T) {
		err := contributionDAO.UpsertGoInOn(ctx, []Contribution{
			{ItemID: item.ID, GiverID: 2, Participating: true},
		})
		require.NoError(t, err)

		var found Contribution
		require.NoError(t, db.Where("item_id = ? AND giver_id = ?", item.ID, 2).First(&found).Error)
		assert.True(t, found.Participating)
		assert.Equal(t, 1, found.NumberGetting, "participation update must not touch the quantity")
	})
}

func TestTrackingDAO_BulkSave(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	trackingDAO := NewTrackingDAO(db)

	event, err := trackingDAO.InsertEvent(ctx, Event{Name: "Birthday", Date: time.Now(), OrganizerID: 10})
	require.NoError(t, err)

	recipient, err := trackingDAO.InsertRecipient(ctx, EventRecipient{EventID: event.ID, UserID: 2, Status: "pending"})
	require.NoError(t, err)

	row, err := trackingDAO.InsertRow(ctx, GiftRow{
		EventID: event.ID, RecipientID: recipient.ID,
		Title: "Telescope", Type: "item", Status: "pending", NumberGetting: 1,
	})
	require.NoError(t, err)

	proposalRow, err := trackingDAO.InsertRow(ctx, GiftRow{
		EventID: event.ID, RecipientID: recipient.ID,
		Title: "Group gift", Type: "proposal", Status: "pending", NumberGetting: 1,
	})
	require.NoError(t, err)

	t.Run("applies rows and recipients", func(t *testing.T) {
		eventIDs, err := trackingDAO.BulkSave(ctx,
			[]RowReplacement{
				{RowID: row.ID, Status: "done", NumberGetting: 2, ActualPrice: 19.99},
			},
			[]RecipientReplacement{
				{RecipientID: recipient.ID, Status: "in-progress", Note: "wrapped"},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, []uint{event.ID}, eventIDs)

		var savedRow GiftRow
		require.NoError(t, db.First(&savedRow, row.ID).Error)
		assert.Equal(t, "done", savedRow.Status)
		assert.Equal(t, 2, savedRow.NumberGetting)

		var savedRecipient EventRecipient
		require.NoError(t, db.First(&savedRecipient, recipient.ID).Error)
		assert.Equal(t, "wrapped", savedRecipient.Note)
	})

	t.Run("pins proposal quantity", func(t *testing.T) {
		_, err := trackingDAO.BulkSave(ctx,
			[]RowReplacement{
				{RowID: proposalRow.ID, Status: "done", NumberGetting: 4},
			},
			nil,
		)
		require.NoError(t, err)

		var saved GiftRow
		require.NoError(t, db.First(&saved, proposalRow.ID).Error)
		assert.Equal(t, 1, saved.NumberGetting)
	})

	t.Run("missing row rolls back the whole batch", func(t *testing.T) {
		_, err := trackingDAO.BulkSave(ctx,
			[]RowReplacement{
				{RowID: row.ID, Status: "pending", NumberGetting: 9},
				{RowID: 9999, Status: "done"},
			},
			nil,
		)
		assert.ErrorIs(t, err, ErrGiftRowNotFound)

		var saved GiftRow
		require.NoError(t, db.First(&saved, row.ID).Error)
		assert.Equal(t, 2, saved.NumberGetting, "the valid row must not be applied when the batch fails")
	})
}
