package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

const owner, alice, bob, carol int64 = 1, 2, 3, 4

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending application", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)
		f.events.reset()

		app, err := f.svc.Applications.Apply(ctx, c.ID, alice, "I can drive")
		require.NoError(t, err)
		assert.Equal(t, string(model.ApplicationPending), app.Status)
		assert.Equal(t, "I can drive", app.Message)
		assert.Equal(t, []model.EventType{model.EventApplicationSubmitted}, f.events.types())
	})

	t.Run("duplicate is a conflict and keeps one row", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)
		f.apply(t, c.ID, alice)

		_, err := f.svc.Applications.Apply(ctx, c.ID, alice, "again")
		assert.ErrorIs(t, err, ErrAlreadyApplied)
		assert.ErrorIs(t, err, ErrConflict)

		apps, err := f.svc.Applications.ListApplications(ctx, c.ID, owner)
		require.NoError(t, err)
		assert.Len(t, apps, 1)
	})

	t.Run("owner cannot apply even when full", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 2)
		f.apply(t, c.ID, alice)
		_, err := f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		require.NoError(t, err)

		_, err = f.svc.Applications.Apply(ctx, c.ID, owner, "")
		assert.ErrorIs(t, err, ErrSelfApplication)
	})

	t.Run("closed listing", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 2)
		f.apply(t, c.ID, alice)
		_, err := f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		require.NoError(t, err)

		_, err = f.svc.Applications.Apply(ctx, c.ID, bob, "")
		assert.ErrorIs(t, err, ErrNotRecruiting)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing listing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Applications.Apply(ctx, 404, alice, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("message too long", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)
		_, err := f.svc.Applications.Apply(ctx, c.ID, alice, strings.Repeat("가", 501))
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = f.svc.Applications.Apply(ctx, c.ID, alice, strings.Repeat("가", 500))
		assert.NoError(t, err)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("last slot closes listing and later approval conflicts", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 2)
		f.apply(t, c.ID, alice, bob)
		f.events.reset()

		app, err := f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		require.NoError(t, err)
		assert.Equal(t, string(model.ApplicationApproved), app.Status)

		listing := f.load(t, c.ID)
		assert.Equal(t, 2, listing.CurrentMembers)
		assert.Equal(t, model.CompanionClosed, listing.Status)
		assert.Equal(t, []model.EventType{model.EventApplicationApproved, model.EventCompanionClosed}, f.events.types())

		_, err = f.svc.Applications.Approve(ctx, c.ID, bob, owner)
		assert.ErrorIs(t, err, ErrConflict)

		pending, err := f.store.Applications().FindByCompanionAndUser(ctx, c.ID, bob)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationPending, pending.Status)
		assert.Equal(t, 2, f.load(t, c.ID).CurrentMembers)
	})

	t.Run("only owner approves", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)
		f.apply(t, c.ID, alice)

		_, err := f.svc.Applications.Approve(ctx, c.ID, alice, bob)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 1, f.load(t, c.ID).CurrentMembers)
	})

	t.Run("no application", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)

		_, err := f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 4)
		f.apply(t, c.ID, alice, bob)
		_, err := f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		require.NoError(t, err)
		_, err = f.svc.Applications.Reject(ctx, c.ID, bob, owner)
		require.NoError(t, err)

		_, err = f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		assert.ErrorIs(t, err, ErrApplicationDecided)
		_, err = f.svc.Applications.Approve(ctx, c.ID, bob, owner)
		assert.ErrorIs(t, err, ErrApplicationDecided)
		assert.Equal(t, 2, f.load(t, c.ID).CurrentMembers)
	})

	t.Run("cancelled listing", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 4)
		f.apply(t, c.ID, alice)
		cancelled := "CANCELLED"
		_, err := f.svc.Companions.Update(ctx, c.ID, owner, &dto.UpdateCompanionRequest{Status: &cancelled})
		require.NoError(t, err)

		_, err = f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		assert.ErrorIs(t, err, ErrNotRecruiting)
	})

	t.Run("approval invalidates cached detail", func(t *testing.T) {
		f := newFixture(t)
		c := f.companion(t, owner, 3)
		f.apply(t, c.ID, alice)

		before, err := f.svc.Companions.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, before.CurrentMembers)

		_, err = f.svc.Applications.Approve(ctx, c.ID, alice, owner)
		require.NoError(t, err)

		after, err := f.svc.Companions.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, after.CurrentMembers)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.companion(t, owner, 2)
	f.apply(t, c.ID, alice)

	_, err := f.svc.Applications.Reject(ctx, c.ID, alice, bob)
	assert.ErrorIs(t, err, ErrForbidden)

	app, err := f.svc.Applications.Reject(ctx, c.ID, alice, owner)
	require.NoError(t, err)
	assert.Equal(t, string(model.ApplicationRejected), app.Status)

	listing := f.load(t, c.ID)
	assert.Equal(t, 1, listing.CurrentMembers)
	assert.Equal(t, model.CompanionRecruiting, listing.Status)

	_, err = f.svc.Applications.Reject(ctx, c.ID, alice, owner)
	assert.ErrorIs(t, err, ErrApplicationDecided)

	_, err = f.svc.Applications.Reject(ctx, c.ID, carol, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListApplications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.companion(t, owner, 5)
	other := f.companion(t, bob, 5)
	f.apply(t, c.ID, alice, bob)
	f.apply(t, other.ID, alice)

	_, err := f.svc.Applications.ListApplications(ctx, c.ID, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	apps, err := f.svc.Applications.ListApplications(ctx, c.ID, owner)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, bob, apps[0].UserID, "newest first")

	mine, err := f.svc.Applications.ListMyApplications(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
