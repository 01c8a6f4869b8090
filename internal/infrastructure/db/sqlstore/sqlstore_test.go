package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func testLead(id string, status domain.LeadStatus, createdAt time.Time) *domain.Lead {
	return &domain.Lead{
		ID:          id,
		FullName:    "Jeanne Martin",
		Email:       "jeanne@example.com",
		RequestType: domain.RequestQuote,
		Message:     "Need a quote for 40 seats",
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(initTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, domain.RoleUser, found.Role)
	assert.Equal(t, "h", found.PasswordHash)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "lookup must be case-sensitive")

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(initTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h2", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLeadRepository_ListFiltersAndOrdersNewestFirst(t *testing.T) {
	repo := NewLeadRepository(initTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, testLead("a", domain.LeadContacted, base)))
	require.NoError(t, repo.Create(ctx, testLead("b", domain.LeadNew, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, testLead("c", domain.LeadContacted, base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, testLead("d", domain.LeadContacted, base.Add(3*time.Minute))))

	leads, total, err := repo.List(ctx, ports.ListLeadsFilter{Status: domain.LeadContacted, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, leads, 3)
	assert.Equal(t, []string{"d", "c", "a"}, []string{leads[0].ID, leads[1].ID, leads[2].ID})

	page, total, err := repo.List(ctx, ports.ListLeadsFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].ID)
	assert.Equal(t, "b", page[1].ID)
}

func TestLeadRepository_UpdateStatusAndDelete(t *testing.T) {
	repo := NewLeadRepository(initTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, testLead("x", domain.LeadNew, created)))

	updated := created.Add(time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, "x", domain.LeadConverted, updated))

	got, err := repo.FindByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, domain.LeadConverted, got.Status)
	assert.True(t, got.UpdatedAt.Equal(updated), "updated_at = %v", got.UpdatedAt)
	assert.True(t, got.CreatedAt.Equal(created))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.LeadLost, updated), domain.ErrLeadNotFound)

	require.NoError(t, repo.Delete(ctx, "x"))
	_, err = repo.FindByID(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "x"), domain.ErrLeadNotFound)
}

func TestLeadRepository_CountByStatus(t *testing.T) {
	repo := NewLeadRepository(initTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	require.NoError(t, repo.Create(ctx, testLead("1", domain.LeadNew, now)))
	require.NoError(t, repo.Create(ctx, testLead("2", domain.LeadNew, now)))
	require.NoError(t, repo.Create(ctx, testLead("3", domain.LeadConverted, now)))

	counts, err = repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[domain.LeadNew])
	assert.EqualValues(t, 1, counts[domain.LeadConverted])
	assert.Zero(t, counts[domain.LeadLost])
}
