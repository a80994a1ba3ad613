package credentials

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path, logging.NewLogger("test", "error"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store, path
}

func TestFileStorePutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	creds := types.Credentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-west-2",
	}

	if err := store.Put(ctx, "alice", creds); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, creds) {
		t.Errorf("Get returned %+v, want %+v", got, creds)
	}

	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "alice"); err == nil {
		t.Error("expected an error after delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "alice"); err != nil {
		t.Errorf("deleting an absent profile should not fail: %v", err)
	}
}

func TestFileStoreRejectsIncompleteCredentials(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "bob", types.Credentials{AccessKeyID: "AKIAEXAMPLE"}); err == nil {
		t.Error("expected an error for missing secret access key")
	}
	if err := store.Put(ctx, "", types.Credentials{AccessKeyID: "a", SecretAccessKey: "b"}); err == nil {
		t.Error("expected an error for empty user ID")
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	creds := types.Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"}
	if err := store.Put(ctx, "alice", creds); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reopened, err := NewFileStore(path, logging.NewLogger("test", "error"))
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	got, err := reopened.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.AccessKeyID != creds.AccessKeyID {
		t.Errorf("reopened store returned %+v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credential file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStoreList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, user := range []string{"carol", "alice", "bob"} {
		if err := store.Put(ctx, user, types.Credentials{AccessKeyID: "AKIA" + user, SecretAccessKey: "s"}); err != nil {
			t.Fatalf("Put %s failed: %v", user, err)
		}
	}

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(users, want) {
		t.Errorf("List = %v, want %v", users, want)
	}
}

func TestCredentialsContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("empty context should carry no credentials")
	}
	if _, err := RequireFromContext(ctx); err == nil {
		t.Error("RequireFromContext should fail on an empty context")
	}

	creds := types.Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"}
	ctx = WithCredentials(ctx, creds)

	got, ok := FromContext(ctx)
	if !ok || got.AccessKeyID != creds.AccessKeyID {
		t.Errorf("FromContext = %+v, %v", got, ok)
	}
}
