package core

import "slices"

// RoomSet is the fixed, ordered list of rooms known at startup.
type RoomSet struct {
	names []string
}

// NewRoomSet builds a room set, dropping empty and duplicate names.
func NewRoomSet(names ...string) RoomSet {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return RoomSet{names: out}
}

// Has reports whether room is part of the set.
func (r RoomSet) Has(room string) bool {
	return slices.Contains(r.names, room)
}

// Names returns a copy of the room names in configuration order.
func (r RoomSet) Names() []string {
	return slices.Clone(r.names)
}

// Empty returns true if the set holds no rooms.
func (r RoomSet) Empty() bool {
	return len(r.names) == 0
}
