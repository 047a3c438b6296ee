package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/goleak"
)

type testDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Status    string        `bson:"status"`
	Owner     *string       `bson:"owner"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func decodeDoc(t *testing.T, raw bson.Raw) testDoc {
	t.Helper()
	doc := testDoc{}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestMemoryStoreInsertStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(fixedClock(start))

	id, err := store.Insert(ctx, "docs", testDoc{Name: "a", CreatedAt: start.Add(-time.Hour)})
	require.NoError(t, err)
	require.False(t, id.IsZero())

	raw, err := store.FindOne(ctx, "docs", id)
	require.NoError(t, err)

	doc := decodeDoc(t, raw)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "a", doc.Name)
	assert.True(t, doc.CreatedAt.Equal(start.Add(time.Second)))
	assert.True(t, doc.UpdatedAt.Equal(doc.CreatedAt))
}

func TestMemoryStoreFindFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	owner := "ana"
	_, err := store.Insert(ctx, "docs", testDoc{Name: "a", Status: "active", Owner: &owner})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "docs", testDoc{Name: "b", Status: "active"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "docs", testDoc{Name: "c", Status: "deleted"})
	require.NoError(t, err)

	active, err := store.Find(ctx, "docs", Filter{"status": "active"})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", decodeDoc(t, active[0]).Name)
	assert.Equal(t, "b", decodeDoc(t, active[1]).Name)

	unowned, err := store.Find(ctx, "docs", Filter{"status": "active", "owner": nil})
	require.NoError(t, err)
	require.Len(t, unowned, 1)
	assert.Equal(t, "b", decodeDoc(t, unowned[0]).Name)

	count, err := store.Count(ctx, "docs", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(fixedClock(start))

	id, err := store.Insert(ctx, "docs", testDoc{Name: "a", Status: "active"})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "docs", id, Fields{
		"status":     "deleted",
		"updated_at": ServerTimestamp,
	}))

	raw, err := store.FindOne(ctx, "docs", id)
	require.NoError(t, err)
	doc := decodeDoc(t, raw)
	assert.Equal(t, "deleted", doc.Status)
	assert.True(t, doc.UpdatedAt.After(doc.CreatedAt))

	assert.ErrorIs(t, store.Update(ctx, "docs", bson.NewObjectID(), Fields{"status": "x"}), ErrNotFound)

	require.NoError(t, store.Delete(ctx, "docs", id))
	_, err = store.FindOne(ctx, "docs", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "docs", id), ErrNotFound)
}

func TestMemoryStoreRejectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Insert(ctx, "docs", testDoc{Name: "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func receive(t *testing.T, sub *Subscription) []bson.Raw {
	t.Helper()
	select {
	case docs, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestMemoryStoreSubscribeDeliversMatchingSets(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Insert(ctx, "docs", testDoc{Name: "a", Status: "active"})
	require.NoError(t, err)

	sub, err := store.Subscribe(ctx, "docs", Filter{"status": "active"})
	require.NoError(t, err)
	defer sub.Close()

	assert.Len(t, receive(t, sub), 1)

	id, err := store.Insert(ctx, "docs", testDoc{Name: "b", Status: "active"})
	require.NoError(t, err)
	assert.Len(t, receive(t, sub), 2)

	require.NoError(t, store.Update(ctx, "docs", id, Fields{"status": "deleted"}))
	docs := receive(t, sub)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", decodeDoc(t, docs[0]).Name)
}

func TestMemoryStoreSubscriptionCloseStopsListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemoryStore()
	sub, err := store.Subscribe(context.Background(), "docs", nil)
	require.NoError(t, err)

	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatal("listener still running after Close")
	}

	_, ok := <-sub.C
	assert.False(t, ok)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.collection("docs").subscribers)
}

func TestMemoryStoreSubscriptionEndsWithParentContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := NewMemoryStore().Subscribe(ctx, "docs", nil)
	require.NoError(t, err)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("listener survived its context")
	}
}
