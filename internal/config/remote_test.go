package config

import (
	"path/filepath"
	"testing"

	"github.com/bganesh/bprogress/internal/localstore"
)

func newTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResolveRemote_Defaults(t *testing.T) {
	t.Setenv("REMOTE_DSN", "")
	t.Setenv("REMOTE_KEY", "")

	remote := ResolveRemote(newTestStore(t))
	if remote.DSN != defaultRemoteDSN || remote.SigningKey != defaultSigningKey {
		t.Errorf("remote = %+v; want compiled-in defaults", remote)
	}
	if !remote.Enabled() {
		t.Errorf("default configuration should enable the remote layer")
	}
}

func TestResolveRemote_UserSuppliedBeatsDefault(t *testing.T) {
	t.Setenv("REMOTE_DSN", "")
	t.Setenv("REMOTE_KEY", "")
	store := newTestStore(t)
	if err := SetRemote(store, "postgres://user@host/db", "user-key"); err != nil {
		t.Fatalf("SetRemote failed: %v", err)
	}

	remote := ResolveRemote(store)
	if remote.DSN != "postgres://user@host/db" || remote.SigningKey != "user-key" {
		t.Errorf("remote = %+v; want the persisted values", remote)
	}
}

func TestResolveRemote_EnvBeatsUserSupplied(t *testing.T) {
	store := newTestStore(t)
	if err := SetRemote(store, "postgres://user@host/db", "user-key"); err != nil {
		t.Fatalf("SetRemote failed: %v", err)
	}
	t.Setenv("REMOTE_DSN", "postgres://env@host/db")
	t.Setenv("REMOTE_KEY", "env-key")

	remote := ResolveRemote(store)
	if remote.DSN != "postgres://env@host/db" || remote.SigningKey != "env-key" {
		t.Errorf("remote = %+v; environment must take precedence", remote)
	}
}

func TestClearRemote(t *testing.T) {
	t.Setenv("REMOTE_DSN", "")
	t.Setenv("REMOTE_KEY", "")
	store := newTestStore(t)
	if err := SetRemote(store, "postgres://user@host/db", "user-key"); err != nil {
		t.Fatalf("SetRemote failed: %v", err)
	}
	if err := ClearRemote(store); err != nil {
		t.Fatalf("ClearRemote failed: %v", err)
	}

	remote := ResolveRemote(store)
	if remote.DSN != defaultRemoteDSN {
		t.Errorf("DSN = %q; cleared configuration should fall back to the default", remote.DSN)
	}
}
