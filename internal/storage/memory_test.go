package storage

import "testing"

func TestMemStoreWriteReadRemove(t *testing.T) {
	s := NewMemStore()
	key, err := s.Write("upload/abc", []byte("bytes"), "image/png")
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	blob, ok := s.Read(key)
	if !ok || string(blob.Data) != "bytes" || blob.MIME != "image/png" {
		t.Fatalf("Read mismatch: ok=%v blob=%+v", ok, blob)
	}
	if !s.Remove(key) {
		t.Fatal("Remove should report the key was present")
	}
	if s.Remove(key) {
		t.Fatal("second Remove should report the key was gone")
	}
	if _, ok := s.Read(key); ok {
		t.Fatal("Read should miss after Remove")
	}
}

func TestMemStoreRejectsTraversalKeys(t *testing.T) {
	s := NewMemStore()
	for _, key := range []string{"", "  ", "..", "../secrets", "a/../../b"} {
		if _, err := s.Write(key, []byte("x"), "image/png"); err == nil {
			t.Fatalf("Write accepted invalid key %q", key)
		}
	}
}

func TestMemStoreRemovePrefix(t *testing.T) {
	s := NewMemStore()
	for _, key := range []string{"render/run1/2030", "render/run1/2040", "render/run2/2030"} {
		if _, err := s.Write(key, []byte("x"), "image/png"); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if removed := s.RemovePrefix("render/run1/"); removed != 2 {
		t.Fatalf("RemovePrefix removed %d entries, want 2", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("store should hold 1 entry, has %d", s.Len())
	}
}
