package push

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureVAPIDKeysGeneratesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "vapid.json")

	keys, err := EnsureVAPIDKeys(path)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if keys.PublicKey == "" || keys.PrivateKey == "" {
		t.Fatalf("generated keys are incomplete: %+v", keys)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("keys file not written: %v", err)
	}

	// Повторный вызов должен вернуть те же ключи, а не перегенерировать.
	again, err := EnsureVAPIDKeys(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.PublicKey != keys.PublicKey || again.PrivateKey != keys.PrivateKey {
		t.Fatalf("keys must be stable across restarts")
	}
}

func TestEnsureVAPIDKeysCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vapid.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	keys, err := EnsureVAPIDKeys(path)
	if err != nil {
		t.Fatalf("corrupt file must trigger regeneration, got error: %v", err)
	}
	if keys.PublicKey == "" || keys.PrivateKey == "" {
		t.Fatalf("regenerated keys are incomplete: %+v", keys)
	}
}
