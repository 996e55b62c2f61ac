package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraftStore(t *testing.T) *DraftStore {
	t.Helper()
	s, err := NewDraftStore(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDraftStoreRoundTrip(t *testing.T) {
	s := newTestDraftStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDraft(ctx, "trade_draft", []byte(`{"symbol":"TCS"}`)))

	got, err := s.LoadDraft(ctx, "trade_draft")
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"TCS"}`, string(got))
}

func TestDraftStoreUpsertsSameKey(t *testing.T) {
	s := newTestDraftStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDraft(ctx, "trade_draft", []byte(`{"symbol":"TCS"}`)))
	require.NoError(t, s.SaveDraft(ctx, "trade_draft", []byte(`{"symbol":"INFY"}`)))

	got, err := s.LoadDraft(ctx, "trade_draft")
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"INFY"}`, string(got))
}

func TestDraftStoreAbsentKey(t *testing.T) {
	s := newTestDraftStore(t)

	got, err := s.LoadDraft(context.Background(), "never_written")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewDraftStore("  ")
	assert.Error(t, err)
}
