package patchstore

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrasynth/gallery/pkg/patch"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testRecord(name string, seed int64) *Record {
	project := patch.NewProject(name, patch.DefaultCatalog())
	return &Record{
		Name:        name,
		Seed:        seed,
		State:       "converged",
		Target:      12,
		ModuleCount: 13,
		Iterations:  40,
		Document:    project.Document(),
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.Equal(t, "test-instance", client.InstanceName())
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})
}

func TestSaveAndGet(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	record := testRecord("42-synth", 42)
	require.NoError(t, client.Save(ctx, record))
	require.NotEmpty(t, record.ID, "save assigns an ID")
	require.NotZero(t, record.CreatedAtMs, "save assigns a timestamp")

	assert.True(t, mr.Exists(PatchKey("test-instance", record.ID)))

	got, err := client.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record, got)

	exists, err := client.Exists(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSave_RejectsInvalidRecord(t *testing.T) {
	client, _ := setupTestClient(t)

	record := testRecord("", 1)
	err := client.Save(context.Background(), record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record name is required")
}

func TestSave_PublishesEvent(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	sub := client.rdb.Subscribe(ctx, PatchEventsChannel("test-instance"))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	record := testRecord("evented", 3)
	require.NoError(t, client.Save(ctx, record))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, record.ID)
}

func TestGet_NotFound(t *testing.T) {
	client, _ := setupTestClient(t)

	_, err := client.Get(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListAndDelete(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	first := testRecord("first", 1)
	first.CreatedAtMs = 1000
	second := testRecord("second", 2)
	second.CreatedAtMs = 2000
	require.NoError(t, client.Save(ctx, second))
	require.NoError(t, client.Save(ctx, first))

	records, err := client.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Name, "oldest first")
	assert.Equal(t, "second", records[1].Name)

	require.NoError(t, client.Delete(ctx, first.ID))
	records, err = client.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	err = client.Delete(ctx, first.ID)
	assert.True(t, IsNotFound(err))
}

func TestResolve(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	a := testRecord("a", 1)
	a.ID = "abcdef01-0000-0000-0000-000000000001"
	b := testRecord("b", 2)
	b.ID = "abcdef02-0000-0000-0000-000000000002"
	require.NoError(t, client.Save(ctx, a))
	require.NoError(t, client.Save(ctx, b))

	t.Run("full UUID", func(t *testing.T) {
		id, err := client.Resolve(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, id)
	})

	t.Run("missing full UUID", func(t *testing.T) {
		_, err := client.Resolve(ctx, uuid.New().String())
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, err := client.Resolve(ctx, "abcdef02")
		require.NoError(t, err)
		assert.Equal(t, b.ID, id)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := client.Resolve(ctx, "abcdef")
		require.Error(t, err)
		require.True(t, IsAmbiguousError(err))

		msg := FormatAmbiguousError(err.(*AmbiguousError))
		assert.Contains(t, msg, a.ID)
		assert.Contains(t, msg, b.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := client.Resolve(ctx, "ffffff")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("prefix too short", func(t *testing.T) {
		_, err := client.Resolve(ctx, "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})
}

func TestFormatAmbiguousError_Truncates(t *testing.T) {
	matches := make([]string, 12)
	for i := range matches {
		matches[i] = uuid.New().String()
	}
	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "abcdef", Matches: matches})
	assert.Contains(t, msg, "...and 2 more")
	assert.Equal(t, 10, strings.Count(msg, "-")/4)
}

func TestHashToRecord_InvalidFields(t *testing.T) {
	_, err := HashToRecord(map[string]string{"seed": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid seed field")

	_, err = HashToRecord(map[string]string{"seed": "1", "target": "1", "module_count": "nope", "iterations": "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid module_count field")

	_, err = HashToRecord(map[string]string{"seed": "1", "target": "1", "module_count": "1", "iterations": "1", "created_at_ms": "yesterday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid created_at_ms field")
}
