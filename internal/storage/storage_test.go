package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "tenaday.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestPutGet(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := st.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, ok, err := st.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := st.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = st.Get(ctx, "k")
	if string(value) != `{"a":2}` {
		t.Fatalf("expected overwrite, got %s", value)
	}
}

func TestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if err := st.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestApply(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Put(ctx, "old", []byte("legacy")); err != nil {
		t.Fatalf("put: %v", err)
	}
	puts := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := st.Apply(ctx, puts, []string{"old", "never-existed"}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		value, ok, err := st.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("get %s: ok=%v err=%v", key, ok, err)
		}
		if string(value) != want {
			t.Fatalf("get %s: got %s, want %s", key, value, want)
		}
	}
	if _, ok, _ := st.Get(ctx, "old"); ok {
		t.Fatalf("expected legacy key to be deleted")
	}
}
