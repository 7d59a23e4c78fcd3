package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addUser(t *testing.T, users *Users, email string) *models.User {
	t.Helper()
	user, err := users.Add(context.Background(), &models.User{Name: "user " + email, Email: email})
	require.NoError(t, err)
	return user
}

func addBooking(t *testing.T, db *database.DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) {
	t.Helper()
	booking := &models.Booking{Start: start, End: end, ItemID: itemID, BookerID: bookerID, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
}

func TestItems_Add(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")

	created, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Description: "tool", Available: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, owner.ID, created.OwnerID)
}

func TestItems_Add_UnknownOwner(t *testing.T) {
	db := setupTestDB(t)
	items := NewItems(db, newTestLogger())

	_, err := items.Add(context.Background(), 99, &models.Item{Name: "Drill", Available: true})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Error: user is not found.", err.Error())
}

func TestItems_Add_UnknownRequest(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	owner := addUser(t, users, "owner@mail.ru")

	_, err := items.Add(context.Background(), owner.ID, &models.Item{Name: "Drill", Available: true, RequestID: 42})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestItems_Update_NonOwnerForbidden(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	stranger := addUser(t, users, "stranger@mail.ru")
	item, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Available: true})
	require.NoError(t, err)

	_, err = items.Update(ctx, stranger.ID, item.ID, models.ItemPatch{Name: strPtr("stolen")})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, "Error: owner item is incorrect.", err.Error())
}

func TestItems_Update_Partial(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	item, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Description: "old", Available: true})
	require.NoError(t, err)

	available := false
	updated, err := items.Update(ctx, owner.ID, item.ID, models.ItemPatch{Available: &available})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, "Drill", updated.Name)
	assert.Equal(t, "old", updated.Description)
}

func TestItems_Get_Enrichment(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	booker := addUser(t, users, "booker@mail.ru")
	item, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Available: true})
	require.NoError(t, err)

	now := time.Now()
	// Past APPROVED bookings do not feed lastBooking, only CANCELED ones do
	addBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-60*time.Hour), models.StatusApproved)
	canceledEnd := now.Add(-24 * time.Hour)
	addBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), canceledEnd, models.StatusCanceled)
	futureStart := now.Add(24 * time.Hour)
	addBooking(t, db, item.ID, booker.ID, futureStart, now.Add(48*time.Hour), models.StatusWaiting)
	addBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusWaiting)

	detail, err := items.Get(ctx, item.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.LastBooking)
	assert.WithinDuration(t, canceledEnd, *detail.LastBooking, time.Second)
	require.NotNil(t, detail.NextBooking)
	assert.WithinDuration(t, futureStart, *detail.NextBooking, time.Second)
	assert.NotNil(t, detail.Comments)
}

func TestItems_List(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	_, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Available: true})
	require.NoError(t, err)
	_, err = items.Add(ctx, owner.ID, &models.Item{Name: "Saw", Available: true})
	require.NoError(t, err)

	details, err := items.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestItems_Search_EmptyText(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	_, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Available: true})
	require.NoError(t, err)

	found, err := items.Search(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	found, err = items.Search(ctx, "drill")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// No hits still yields an empty list, not nil
	found, err = items.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestItems_AddComment_RequiresFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	users := NewUsers(db, newTestLogger())
	items := NewItems(db, newTestLogger())
	ctx := context.Background()

	owner := addUser(t, users, "owner@mail.ru")
	booker := addUser(t, users, "booker@mail.ru")
	item, err := items.Add(ctx, owner.ID, &models.Item{Name: "Drill", Available: true})
	require.NoError(t, err)

	_, err = items.AddComment(ctx, item.ID, booker.ID, "never rented it")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	now := time.Now()
	addBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)

	comment, err := items.AddComment(ctx, item.ID, booker.ID, "worked fine")
	require.NoError(t, err)
	assert.Equal(t, "worked fine", comment.Text)
	assert.Equal(t, booker.Name, comment.AuthorName)
	assert.False(t, comment.Created.IsZero())
}
