package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	"github.com/Gopher0727/TripMate/internal/testutil"
)

func TestGormStore_Postgres(t *testing.T) {
	store := repository.NewStore(testutil.SetupPostgres(t))
	ctx := context.Background()

	trip := &model.Trip{ID: 100, OwnerID: 1, Title: "Jeju", Destination: "Jeju Island",
		StartDate: time.Now(), EndDate: time.Now().Add(72 * time.Hour),
		Themes: []string{"NATURE", "FOOD"}, Status: model.TripPlanning}
	require.NoError(t, store.Trips().Create(ctx, trip))

	companion := &model.Companion{ID: 200, TripID: 100, OwnerID: 1, Title: "hike", Content: "hallasan",
		MaxMembers: 3, CurrentMembers: 1, Status: model.CompanionRecruiting}
	require.NoError(t, store.Companions().Create(ctx, companion))

	t.Run("themes round trip through json column", func(t *testing.T) {
		got, err := store.Trips().FindByID(ctx, 100, repository.LockNone)
		require.NoError(t, err)
		assert.Equal(t, []string{"NATURE", "FOOD"}, got.Themes)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := store.Companions().FindByID(ctx, 999, repository.LockNone)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate application", func(t *testing.T) {
		require.NoError(t, store.Applications().Create(ctx, &model.CompanionApplication{
			ID: 300, CompanionID: 200, UserID: 2, Status: model.ApplicationPending}))
		err := store.Applications().Create(ctx, &model.CompanionApplication{
			ID: 301, CompanionID: 200, UserID: 2, Status: model.ApplicationPending})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("one room per listing", func(t *testing.T) {
		require.NoError(t, store.ChatRooms().Create(ctx, &model.ChatRoom{ID: 400, CompanionID: 200}))
		err := store.ChatRooms().Create(ctx, &model.ChatRoom{ID: 401, CompanionID: 200})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("rooms for owner and approved members", func(t *testing.T) {
		require.NoError(t, store.Applications().UpdateStatus(ctx, 300, model.ApplicationApproved))

		for _, user := range []int64{1, 2} {
			rooms, err := store.ChatRooms().ListForUser(ctx, user)
			require.NoError(t, err)
			require.Len(t, rooms, 1, "user %d", user)
			assert.Equal(t, int64(400), rooms[0].ID)
		}
		rooms, err := store.ChatRooms().ListForUser(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})

	t.Run("destination filter joins trips", func(t *testing.T) {
		list, total, err := store.Companions().List(ctx, repository.CompanionFilter{
			Destination: "jeju", Status: model.CompanionRecruiting}, 10, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, list, 1)
		assert.Equal(t, int64(200), list[0].ID)
	})

	t.Run("schedules ordered by day then time", func(t *testing.T) {
		require.NoError(t, store.Schedules().CreateBatch(ctx, []*model.TripSchedule{
			{ID: 500, TripID: 100, DayNumber: 2, Time: "08:00", PlaceName: "Udo", PlaceType: model.PlaceAttraction},
			{ID: 501, TripID: 100, DayNumber: 1, Time: "19:30", PlaceName: "Dinner", PlaceType: model.PlaceRestaurant},
			{ID: 502, TripID: 100, DayNumber: 1, Time: "07:00", PlaceName: "Airport", PlaceType: model.PlaceTransport},
		}))
		got, err := store.Schedules().ListByTrip(ctx, 100)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []int64{502, 501, 500}, []int64{got[0].ID, got[1].ID, got[2].ID})

		require.NoError(t, store.Schedules().DeleteByTrip(ctx, 100))
		got, err = store.Schedules().ListByTrip(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("listing rows locked by trip", func(t *testing.T) {
		err := store.Transaction(ctx, func(tx repository.IStore) error {
			list, err := tx.Companions().ListByTrip(ctx, 100, repository.LockUpdate)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, int64(200), list[0].ID)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Transaction(ctx, func(tx repository.IStore) error {
			c, err := tx.Companions().FindByID(ctx, 200, repository.LockUpdate)
			require.NoError(t, err)
			c.CurrentMembers = 3
			require.NoError(t, tx.Companions().Update(ctx, c))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		c, err := store.Companions().FindByID(ctx, 200, repository.LockNone)
		require.NoError(t, err)
		assert.Equal(t, 1, c.CurrentMembers)
	})

	t.Run("cascade helpers", func(t *testing.T) {
		require.NoError(t, store.Transaction(ctx, func(tx repository.IStore) error {
			if err := tx.Applications().DeleteByCompanion(ctx, 200); err != nil {
				return err
			}
			if err := tx.ChatRooms().DeleteByCompanion(ctx, 200); err != nil {
				return err
			}
			return tx.Companions().Delete(ctx, 200)
		}))

		apps, err := store.Applications().ListByCompanion(ctx, 200)
		require.NoError(t, err)
		assert.Empty(t, apps)
		_, err = store.ChatRooms().FindByCompanion(ctx, 200)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
