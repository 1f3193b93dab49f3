package peers

import "sync"

// PeerSet is the ordered list of neighbor ids that this node gossips to. It
// is replaced wholesale by a topology message, never merged.
type PeerSet struct {
	l     sync.Mutex
	peers []string
}

// NewPeerSet creates a PeerSet from a list of neighbor ids.
func NewPeerSet(peers []string) *PeerSet {
	ps := &PeerSet{
		peers: make([]string, len(peers)),
	}
	copy(ps.peers, peers)
	return ps
}

// Replace swaps in a new neighbor list, discarding the previous one.
func (p *PeerSet) Replace(peers []string) {
	p.l.Lock()
	defer p.l.Unlock()
	p.peers = make([]string, len(peers))
	copy(p.peers, peers)
}

// IDs returns a copy of the neighbor list, in topology order.
func (p *PeerSet) IDs() []string {
	p.l.Lock()
	defer p.l.Unlock()
	res := make([]string, len(p.peers))
	copy(res, p.peers)
	return res
}

// Len returns the number of neighbors.
func (p *PeerSet) Len() int {
	p.l.Lock()
	defer p.l.Unlock()
	return len(p.peers)
}

// ExcludePeer is used to exclude a single peer from a list of peers.
func ExcludePeer(peers []string, peer string) []string {
	otherPeers := make([]string, 0, len(peers))
	for _, p := range peers {
		if p != peer {
			otherPeers = append(otherPeers, p)
		}
	}
	return otherPeers
}
