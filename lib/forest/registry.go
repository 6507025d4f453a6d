// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

// Package forest wraps the tree and graph arenas in a reference-counted
// container registry: every Tree or Graph gets a stable ContainerRef,
// instancing a container under a hierarchy position bumps its
// refcount, and a hierarchy Cursor walks a forest of such instances.
package forest

import "github.com/masc-ucsc/hhds/lib/hhdsprim"

// slot is one registry entry: a live container, its refcount, or (once
// a delete succeeds at refcount zero) a permanent tombstone. Tombstoned slots are
// never reused -- the registry's frontier only grows, trading id-space
// density for never having to worry about a ref being silently
// recycled out from under a stale holder (spec.md §9's resolved open
// question on tombstone reuse).
type slot[C any] struct {
	container C
	refcount  int
	tomb      bool
}

// registry is the reference-counted, never-reclaiming id allocator
// shared by Forest and GraphLibrary. Index 0 is reserved invalid.
type registry[C any] struct {
	slots []slot[C]
}

func newRegistry[C any]() *registry[C] {
	return &registry[C]{slots: make([]slot[C], 1)}
}

// create registers a freshly constructed container with a refcount of
// zero -- it is not yet referenced by anything, including its own
// creator (spec.md §4.3: "set refcount = 0"). It only becomes
// undeletable once some position elsewhere takes a reference via
// addRef.
func (r *registry[C]) create(c C) int {
	r.slots = append(r.slots, slot[C]{container: c})
	return len(r.slots) - 1
}

func (r *registry[C]) valid(id int) bool {
	return id > 0 && id < len(r.slots) && !r.slots[id].tomb
}

// get returns id's container and whether id is a valid, non-tombstoned
// reference.
func (r *registry[C]) get(id int) (C, bool) {
	if !r.valid(id) {
		var zero C
		return zero, false
	}
	return r.slots[id].container, true
}

func (r *registry[C]) refcount(id int) int {
	hhdsprim.Assert(r.valid(id), "registry: invalid or tombstoned id %d", id)
	return r.slots[id].refcount
}

func (r *registry[C]) isTombstoned(id int) bool {
	return id > 0 && id < len(r.slots) && r.slots[id].tomb
}

// addRef bumps id's refcount, e.g. when a position in some other
// container instances it.
func (r *registry[C]) addRef(id int) {
	hhdsprim.Assert(r.valid(id), "registry: addRef on invalid or tombstoned id %d", id)
	r.slots[id].refcount++
}

// decRef drops id's refcount by one, e.g. when the position
// referencing it is deleted. It never deletes the container itself --
// only delete (below) does that, and only when refcount is zero.
func (r *registry[C]) decRef(id int) {
	hhdsprim.Assert(r.valid(id), "registry: decRef on invalid or tombstoned id %d", id)
	s := &r.slots[id]
	hhdsprim.Invariant(s.refcount > 0, "registry: refcount underflow on id %d", id)
	s.refcount--
}

// delete tombstones id and frees its container payload, but only if
// id's refcount is currently zero. Reports whether it did so.
func (r *registry[C]) delete(id int) bool {
	hhdsprim.Assert(r.valid(id), "registry: delete on invalid or tombstoned id %d", id)
	s := &r.slots[id]
	if s.refcount != 0 {
		return false
	}
	var zero C
	s.container = zero
	s.tomb = true
	return true
}
