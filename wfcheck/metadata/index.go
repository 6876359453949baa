package metadata

import "strings"

// Key identifies the epoch list for one channel. A single flat composite
// key replaces the nested net/sta/loc/cha dictionaries of the legacy
// tooling while keeping the same semantics.
type Key struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

type stationKey struct {
	Network string
	Station string
}

// Index is the read-only epoch lookup built once before the archive walk.
// The secondary maps exist so the walker can prune whole subtrees without
// scanning epoch lists.
type Index struct {
	epochs   map[Key][]Epoch
	networks map[string]struct{}
	stations map[string]map[string]struct{}
	channels map[stationKey]map[string]struct{}
}

// BuildIndex groups a flat epoch list into the lookup structure.
func BuildIndex(epochs []Epoch) *Index {
	idx := &Index{
		epochs:   make(map[Key][]Epoch),
		networks: make(map[string]struct{}),
		stations: make(map[string]map[string]struct{}),
		channels: make(map[stationKey]map[string]struct{}),
	}
	for _, e := range epochs {
		k := Key{e.Network, e.Station, e.Location, e.Channel}
		idx.epochs[k] = append(idx.epochs[k], e)

		idx.networks[e.Network] = struct{}{}
		if idx.stations[e.Network] == nil {
			idx.stations[e.Network] = make(map[string]struct{})
		}
		idx.stations[e.Network][e.Station] = struct{}{}

		sk := stationKey{e.Network, e.Station}
		if idx.channels[sk] == nil {
			idx.channels[sk] = make(map[string]struct{})
		}
		idx.channels[sk][e.Channel] = struct{}{}
	}
	return idx
}

// Lookup returns the epochs for a channel, or false when the index holds
// no metadata at all for the combination.
func (idx *Index) Lookup(network, station, location, channel string) ([]Epoch, bool) {
	epochs, ok := idx.epochs[Key{network, station, location, channel}]
	return epochs, ok
}

// HasStation reports whether any epoch exists for the station under the
// given network.
func (idx *Index) HasStation(network, station string) bool {
	_, ok := idx.stations[network][station]
	return ok
}

// ChannelKnown reports whether the channel token appears under any
// location of the station. Channel directory names may carry a compound
// label such as "HHZ.D"; the caller passes the token before the first dot.
func (idx *Index) ChannelKnown(network, station, channelToken string) bool {
	token, _, _ := strings.Cut(channelToken, ".")
	_, ok := idx.channels[stationKey{network, station}][token]
	return ok
}

// Networks returns the set of network codes present in the index. The
// walker prunes whole network subtrees against this snapshot before
// descending into them.
func (idx *Index) Networks() map[string]struct{} {
	return idx.networks
}

// Len returns the number of distinct channel combinations indexed.
func (idx *Index) Len() int {
	return len(idx.epochs)
}
