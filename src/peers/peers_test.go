package peers

import (
	"reflect"
	"testing"
)

func TestExcludePeer(t *testing.T) {
	peers := []string{"n2", "n3", "n4"}

	otherPeers := ExcludePeer(peers, "n3")
	if !reflect.DeepEqual(otherPeers, []string{"n2", "n4"}) {
		t.Fatalf("expected [n2 n4], got %v", otherPeers)
	}

	// Excluding an unknown peer leaves the list untouched.
	otherPeers = ExcludePeer(peers, "c1")
	if !reflect.DeepEqual(otherPeers, peers) {
		t.Fatalf("expected %v, got %v", peers, otherPeers)
	}
}

func TestPeerSetReplace(t *testing.T) {
	ps := NewPeerSet([]string{"n2"})

	if ps.Len() != 1 {
		t.Fatalf("expected 1 peer, got %d", ps.Len())
	}

	ps.Replace([]string{"n3", "n4"})

	if !reflect.DeepEqual(ps.IDs(), []string{"n3", "n4"}) {
		t.Fatalf("expected [n3 n4], got %v", ps.IDs())
	}

	// IDs returns a copy; mutating it must not affect the set.
	ids := ps.IDs()
	ids[0] = "nX"
	if ps.IDs()[0] != "n3" {
		t.Fatal("IDs should return a copy")
	}
}

func TestJSONPeerSet(t *testing.T) {
	dir := t.TempDir()

	store := NewJSONPeerSet(dir)

	if err := store.Write([]string{"n2", "n3"}); err != nil {
		t.Fatalf("err: %v", err)
	}

	ps, err := store.PeerSet()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if !reflect.DeepEqual(ps.IDs(), []string{"n2", "n3"}) {
		t.Fatalf("expected [n2 n3], got %v", ps.IDs())
	}
}

func TestJSONPeerSetMissingFile(t *testing.T) {
	store := NewJSONPeerSet(t.TempDir())

	if _, err := store.PeerSet(); err == nil {
		t.Fatal("expected an error for a missing peers.json")
	}
}
