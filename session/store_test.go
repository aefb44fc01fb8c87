package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DimasRabelo/delivery-frontend/domain"
	"github.com/DimasRabelo/delivery-frontend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, kv store.Store, token string, user domain.User) {
	t.Helper()
	ctx := context.Background()
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "token", token))
	require.NoError(t, kv.Set(ctx, "user", string(raw)))
}

func TestRestore_EmptyStore(t *testing.T) {
	sut := NewStore(store.NewMemoryStore())

	assert.True(t, sut.Snapshot().IsLoading)

	sut.Restore(context.Background())

	snap := sut.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.False(t, snap.IsAuthenticated())
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
}

func TestRestore_ValidSession(t *testing.T) {
	kv := store.NewMemoryStore()
	seedSession(t, kv, "tok-1", domain.User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: domain.RoleCustomer})

	sut := NewStore(kv)
	sut.Restore(context.Background())

	snap := sut.Snapshot()
	assert.False(t, snap.IsLoading)
	require.True(t, snap.IsAuthenticated())
	assert.Equal(t, "tok-1", snap.Token)
	assert.Equal(t, 7, snap.User.ID)
	assert.Equal(t, domain.RoleCustomer, snap.User.Role)
}

func TestRestore_CorruptUser_ClearsPersistedEntries(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "token", "tok-1"))
	require.NoError(t, kv.Set(ctx, "user", "{not json"))

	sut := NewStore(kv)
	sut.Restore(ctx)

	snap := sut.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)

	_, err := kv.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = kv.Get(ctx, "user")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRestore_TokenWithoutUser_StaysUnauthenticated(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "token", "tok-1"))

	sut := NewStore(kv)
	sut.Restore(ctx)

	snap := sut.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.Empty(t, snap.Token)
}

func TestIsLoading_FalseForeverAfterRestore(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(store.NewMemoryStore())
	sut.Restore(ctx)

	require.NoError(t, sut.Login(ctx, "tok-1", domain.User{ID: 1, Role: domain.RoleCustomer}))
	assert.False(t, sut.Snapshot().IsLoading)
	sut.OpenPrompt()
	assert.False(t, sut.Snapshot().IsLoading)
	sut.Logout(ctx)
	assert.False(t, sut.Snapshot().IsLoading)
}

func TestLogin_PersistsAndPublishesAtomically(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	sut := NewStore(kv)
	sut.Restore(ctx)

	// Every published snapshot must have token and user set together.
	var seen []State
	sut.Subscribe(func(s State) {
		seen = append(seen, s)
		assert.Equal(t, s.User != nil, s.Token != "", "half-updated session published")
	})

	user := domain.User{ID: 2, Name: "Bia", Email: "bia@example.com", Role: domain.RoleCustomer}
	require.NoError(t, sut.Login(ctx, "tok-2", user))

	require.Len(t, seen, 1)
	assert.True(t, seen[0].IsAuthenticated())

	storedToken, err := kv.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", storedToken)

	rawUser, err := kv.Get(ctx, "user")
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &stored))
	assert.Equal(t, user, stored)
}

type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) Set(context.Context, string, string) error { return f.err }

func TestLogin_PersistFailure_PropagatesAndLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &failingStore{Store: store.NewMemoryStore(), err: assert.AnError}
	sut := NewStore(kv)
	sut.Restore(ctx)

	err := sut.Login(ctx, "tok-3", domain.User{ID: 3, Role: domain.RoleCustomer})
	require.Error(t, err)

	snap := sut.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.Nil(t, snap.User)
}

func TestLogout_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	sut := NewStore(kv)
	sut.Restore(ctx)
	require.NoError(t, sut.Login(ctx, "tok-4", domain.User{ID: 4, Role: domain.RoleCourier}))

	sut.Logout(ctx)
	sut.Logout(ctx)

	snap := sut.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)

	_, err := kv.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPromptFlags(t *testing.T) {
	sut := NewStore(store.NewMemoryStore())
	sut.Restore(context.Background())

	assert.False(t, sut.Snapshot().IsPromptOpen)
	sut.OpenPrompt()
	assert.True(t, sut.Snapshot().IsPromptOpen)
	sut.ClosePrompt()
	assert.False(t, sut.Snapshot().IsPromptOpen)
}

func TestSubscribe_DeliversEveryTransitionInOrder(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(store.NewMemoryStore())

	var first, second []State
	sut.Subscribe(func(s State) { first = append(first, s) })
	sut.Subscribe(func(s State) { second = append(second, s) })

	sut.Restore(ctx)
	require.NoError(t, sut.Login(ctx, "tok-5", domain.User{ID: 5, Role: domain.RoleCustomer}))
	sut.Logout(ctx)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	assert.False(t, first[0].IsAuthenticated())
	assert.True(t, first[1].IsAuthenticated())
	assert.False(t, first[2].IsAuthenticated())
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(store.NewMemoryStore())

	calls := 0
	id := sut.Subscribe(func(State) { calls++ })

	sut.Restore(ctx)
	require.Equal(t, 1, calls)

	sut.Unsubscribe(id)
	sut.OpenPrompt()
	assert.Equal(t, 1, calls)
}

func TestSnapshot_UserIsACopy(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(store.NewMemoryStore())
	sut.Restore(ctx)
	require.NoError(t, sut.Login(ctx, "tok-6", domain.User{ID: 6, Name: "Caio", Role: domain.RoleVendor, VendorID: 12}))

	snap := sut.Snapshot()
	snap.User.Name = "mutated"

	assert.Equal(t, "Caio", sut.Snapshot().User.Name)
}
