/*
Package room contains the in-memory domain model of the coordination core.

This file defines the Registry, the process-wide mapping from room slug to
Room aggregate. The registry holds no locks of its own: every access happens
on the hub's event loop, which provides the required mutual exclusion.
*/
package room

import "errors"

// ErrSlugTaken rejects creation of a room under a slug that already exists.
var ErrSlugTaken = errors.New("room slug already exists")

// Registry owns every live room, keyed by slug.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create makes a new room under the given slug. The slug is assumed
// validated by the caller; a taken slug returns ErrSlugTaken.
func (reg *Registry) Create(slug, name string) (*Room, error) {
	if _, ok := reg.rooms[slug]; ok {
		return nil, ErrSlugTaken
	}

	r := New(slug, name)
	reg.rooms[slug] = r

	return r, nil
}

// Get looks up a room by slug, returning nil when absent.
func (reg *Registry) Get(slug string) *Room {
	return reg.rooms[slug]
}

// Delete removes a room, reporting whether it existed.
func (reg *Registry) Delete(slug string) bool {
	if _, ok := reg.rooms[slug]; !ok {
		return false
	}

	delete(reg.rooms, slug)
	return true
}

// Rooms returns a snapshot slice of all live rooms, for the reaper's sweep.
func (reg *Registry) Rooms() []*Room {
	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r)
	}
	return out
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	return len(reg.rooms)
}
