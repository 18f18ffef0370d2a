package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

type adminFixture struct {
	users    *fakeUserStore
	thumbs   *fakeThumbnailStore
	payments *fakePaymentStore
	svc      *AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users:    newFakeUserStore(),
		thumbs:   newFakeThumbnailStore(),
		payments: newFakePaymentStore(),
	}
	f.svc = NewAdminService(discardLogger(), f.users, f.thumbs, f.payments)
	return f
}

func TestStats(t *testing.T) {
	f := newAdminFixture()
	f.users.add(models.User{Email: "a@b.c", Role: models.RoleUser})
	f.users.add(models.User{Email: "p@b.c", Role: models.RoleUser, IsPremium: true})
	require.NoError(t, f.thumbs.Create(context.Background(), &models.Thumbnail{UserID: 1}))
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{UserID: 2, OrderID: "o1"}))

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalGenerations)
	assert.Equal(t, 1, stats.TotalPayments)
	assert.Equal(t, 1, stats.PremiumUsers)
}

func TestTogglePremium(t *testing.T) {
	f := newAdminFixture()
	user := f.users.add(models.User{Email: "a@b.c", Role: models.RoleUser})

	updated, err := f.svc.TogglePremium(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPremium)
	assert.True(t, f.users.get(user.ID).IsPremium)

	updated, err = f.svc.TogglePremium(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsPremium)
	assert.False(t, f.users.get(user.ID).IsPremium)
}

func TestTogglePremiumUnknownUser(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.TogglePremium(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkDeleteThumbnails(t *testing.T) {
	f := newAdminFixture()
	alice := f.users.add(models.User{Email: "a@b.c", Role: models.RoleUser, GenerationCount: 3})
	bob := f.users.add(models.User{Email: "b@b.c", Role: models.RoleUser, GenerationCount: 2})

	byOwner := make(map[int64][]int64)
	for _, owner := range []int64{alice.ID, alice.ID, alice.ID, bob.ID, bob.ID} {
		thumb := &models.Thumbnail{UserID: owner}
		require.NoError(t, f.thumbs.Create(context.Background(), thumb))
		byOwner[owner] = append(byOwner[owner], thumb.ID)
	}

	// Two of alice's, one of bob's, plus an id that resolves to nothing.
	ids := []int64{byOwner[alice.ID][0], byOwner[alice.ID][1], byOwner[bob.ID][0], 9999}

	deleted, err := f.svc.BulkDeleteThumbnails(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	// Each owner's counter shrinks by the number of their own assets removed.
	assert.Equal(t, 1, f.users.get(alice.ID).GenerationCount)
	assert.Equal(t, 1, f.users.get(bob.ID).GenerationCount)

	count, _ := f.thumbs.Count(context.Background())
	assert.Equal(t, 2, count)
}

func TestBulkDeleteClampsCounter(t *testing.T) {
	f := newAdminFixture()
	// The counter can lag behind reality after manual cleanup; deletion
	// must not drive it negative.
	user := f.users.add(models.User{Email: "a@b.c", Role: models.RoleUser, GenerationCount: 0})

	thumb := &models.Thumbnail{UserID: user.ID}
	require.NoError(t, f.thumbs.Create(context.Background(), thumb))

	deleted, err := f.svc.BulkDeleteThumbnails(context.Background(), []int64{thumb.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 0, f.users.get(user.ID).GenerationCount)
}

func TestBulkDeleteEmptyInput(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.BulkDeleteThumbnails(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}
