package runlock

import "testing"

func TestKeyForNamespacesByTarget(t *testing.T) {
	got := keyFor("bolt://127.0.0.1:7687")
	want := "mgimport:lock:bolt://127.0.0.1:7687"
	if got != want {
		t.Errorf("keyFor() = %q, want %q", got, want)
	}
}
