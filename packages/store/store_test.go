package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite://" + filepath.Join(t.TempDir(), "apidoc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(method, route string, status int) recorder.RequestRecord {
	return recorder.RequestRecord{
		Method:             method,
		Route:              route,
		RequestHeaders:     "Host: example.org",
		ResponseStatus:     status,
		ResponseStatusText: "OK",
		ResponseBody:       "{\n  \"ok\": true\n}",
		ResponseHeaders:    "Content-Type: application/json",
		Curl:               "curl http://example.org" + route + " -X " + method,
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn      string
		expected string
		wantErr  bool
	}{
		{"sqlite:///tmp/a.db", "/tmp/a.db", false},
		{"sqlite:./a.db", "./a.db", false},
		{"a.db", "a.db", false},
		{"postgres://localhost/db", "", true},
		{"  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSaveAndLoadExample(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := recorder.NewMetadata("order flow", true)
	meta.Requests = []recorder.RequestRecord{
		record("POST", "/orders", 201),
		record("GET", "/orders/1", 200),
		record("DELETE", "/orders/1", 204),
	}
	meta.Requests[0].RequestBody = "{\n  \"qty\": 2\n}"
	meta.Requests[1].RequestQueryParameters = "expand: items"

	require.NoError(t, s.SaveExample(ctx, meta))

	loaded, err := s.LoadExample(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)
}

func TestSaveExample_ReplacesRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := recorder.NewMetadata("first", true)
	meta.Requests = []recorder.RequestRecord{record("GET", "/a", 200), record("GET", "/b", 200)}
	require.NoError(t, s.SaveExample(ctx, meta))

	meta.Description = "second"
	meta.Requests = []recorder.RequestRecord{record("GET", "/c", 200)}
	require.NoError(t, s.SaveExample(ctx, meta))

	loaded, err := s.LoadExample(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Description)
	require.Len(t, loaded.Requests, 1)
	assert.Equal(t, "/c", loaded.Requests[0].Route)
}

func TestSaveExample_RejectsInvalidRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := recorder.NewMetadata("bad", true)
	bad := record("GET", "/", 200)
	bad.Curl = "wget http://example.org/"
	meta.Requests = []recorder.RequestRecord{bad}

	err := s.SaveExample(ctx, meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curl")

	_, err = s.LoadExample(ctx, meta.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadExample_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadExample(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestListExamples(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	empty, err := s.ListExamples(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := recorder.NewMetadata("first", true)
	first.Requests = []recorder.RequestRecord{record("GET", "/a", 200), record("GET", "/b", 200)}
	second := recorder.NewMetadata("second", false)

	require.NoError(t, s.SaveExample(ctx, first))
	require.NoError(t, s.SaveExample(ctx, second))
	require.NoError(t, s.SaveExample(ctx, first))

	list, err := s.ListExamples(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 2, list[0].Records)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC), list[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 3, 0, time.UTC), list[0].UpdatedAt)

	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, "second", list[1].Description)
	assert.Equal(t, 0, list[1].Records)
}

func TestDeleteExample(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := recorder.NewMetadata("to delete", true)
	meta.Requests = []recorder.RequestRecord{record("GET", "/", 200)}
	require.NoError(t, s.SaveExample(ctx, meta))

	require.NoError(t, s.DeleteExample(ctx, meta.ID))
	_, err := s.LoadExample(ctx, meta.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteExample(ctx, meta.ID), ErrNotFound)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apidoc.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	meta := recorder.NewMetadata("persisted", true)
	require.NoError(t, s.SaveExample(ctx, meta))
	require.NoError(t, s.Close())

	s, err = Open("sqlite:" + path)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.LoadExample(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.Description)
	assert.Empty(t, loaded.Requests)
	assert.Equal(t, path, s.Path())
}
