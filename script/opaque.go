// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

// OpaqueDriver supplies the behavior a native object needs to live
// inside a Value: a string representation for get_string, and a
// destructor run once the object becomes unreachable (spec §4.2, §4.3).
type OpaqueDriver interface {
	MakeRep(data any) string
	Destroy(data any)
}

// Opaque is a driver-provided value held behind the interpreter's arena:
// ref_count tracks references from variables and top-level handles,
// link_count tracks references from other opaques' child lists, and
// children is the ordered list of values this opaque holds (spec §4.3).
type Opaque struct {
	id        oid
	driver    OpaqueDriver
	data      any
	refCount  int
	linkCount int
	children  []Value
	color     int
}

// Arena owns the oid allocator and the opaque table for one interpreter,
// serializing opaque destruction (spec design note: "place all opaques
// behind a per-interpreter arena so destruction is serialized").
type Arena struct {
	ids  oidArena
	objs map[oid]*Opaque
}

// NewArena returns an empty opaque arena.
func NewArena() *Arena {
	return &Arena{objs: map[oid]*Opaque{}}
}

// New allocates an opaque with an initial ref_count of 1 (the caller's
// reference) and returns it.
func (a *Arena) New(driver OpaqueDriver, data any) *Opaque {
	id := a.ids.create()
	o := &Opaque{id: id, driver: driver, data: data, refCount: 1}
	a.objs[id] = o
	return o
}

// Ref takes a strong reference (a variable binding or a top-level
// handle), per spec §4.3 "a value that holds an opaque is either a
// reference (ref_count++) or a link (link_count++)".
func (a *Arena) Ref(o *Opaque) {
	if o == nil {
		return
	}
	o.refCount++
}

// Unref drops a strong reference, collecting o if it becomes garbage.
func (a *Arena) Unref(o *Opaque) {
	if o == nil {
		return
	}
	o.refCount--
	if o.refCount <= 0 {
		a.collect(o)
	}
}

// Link adds child to parent's child list and takes a link (weak,
// traversable) reference on it.
func (a *Arena) Link(parent, child *Opaque) {
	if parent == nil || child == nil {
		return
	}
	parent.children = append(parent.children, NewOpaque(child))
	child.linkCount++
}

// Unlink removes one occurrence of child from parent's child list and
// drops the corresponding link reference, collecting child if it
// becomes garbage.
func (a *Arena) Unlink(parent, child *Opaque) {
	if parent == nil || child == nil {
		return
	}
	for i, v := range parent.children {
		if c, ok := v.Opaque(); ok && c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	child.linkCount--
	if child.linkCount <= 0 && child.refCount <= 0 {
		a.collect(child)
	}
}

// MkRefLink converts a reference to a link in place: the caller no
// longer holds a strong reference, but the object gains a link from the
// caller's own opaque holder (spec §4.3 "mk_ref_link").
func (a *Arena) MkRefLink(holder, o *Opaque) {
	if o == nil {
		return
	}
	o.refCount--
	a.Link(holder, o)
	if o.refCount <= 0 && o.linkCount <= 0 {
		a.collect(o)
	}
}

// collect implements the two-pass cycle check of spec §4.3. Pass one
// walks the subgraph reachable from root's children, coloring each
// opaque with the number of internal incoming links it received (a
// back-edge into root itself colors root too, catching the case where
// root is still linked from elsewhere in the subgraph). Pass two
// decides, independently for root and for each reachable opaque,
// whether its full link_count is accounted for by that color and its
// ref_count is zero; only root's own pass/fail gates whether collection
// happens at all, since root is the node whose ref_count just reached
// zero. Any reachable opaque that does not independently pass survives,
// as does every opaque a survivor links to (root included, in which case
// nothing is collected), and each survivor loses the link_count
// contributed by whichever destroyed opaques pointed at it.
func (a *Arena) collect(root *Opaque) {
	if root == nil || root.refCount > 0 {
		return
	}
	color := map[oid]int{}
	visited := map[oid]bool{root.id: true}
	candidates := []*Opaque{root}
	var mark func(o *Opaque)
	mark = func(o *Opaque) {
		for _, v := range o.children {
			c, ok := v.Opaque()
			if !ok {
				continue
			}
			color[c.id]++
			if !visited[c.id] {
				visited[c.id] = true
				candidates = append(candidates, c)
				mark(c)
			}
		}
	}
	mark(root)

	if color[root.id] != root.linkCount {
		return // something outside this subgraph still links to root.
	}

	garbage := map[oid]bool{}
	for _, n := range candidates {
		if color[n.id] == n.linkCount && n.refCount == 0 {
			garbage[n.id] = true
		}
	}

	// An opaque linked from a survivor is still reachable.
	var rescue func(o *Opaque)
	rescue = func(o *Opaque) {
		for _, v := range o.children {
			if c, ok := v.Opaque(); ok && garbage[c.id] {
				delete(garbage, c.id)
				rescue(c)
			}
		}
	}
	for _, n := range candidates {
		if !garbage[n.id] {
			rescue(n)
		}
	}

	// Survivors lose the link contributed by any destroyed opaque that
	// pointed at them.
	for _, n := range candidates {
		if !garbage[n.id] {
			continue
		}
		for _, v := range n.children {
			c, ok := v.Opaque()
			if ok && !garbage[c.id] {
				c.linkCount--
			}
		}
	}

	for _, n := range candidates {
		if garbage[n.id] {
			a.destroy(n)
		}
	}
}

func (a *Arena) destroy(o *Opaque) {
	if _, present := a.objs[o.id]; !present {
		return
	}
	if o.driver != nil {
		o.driver.Destroy(o.data)
	}
	delete(a.objs, o.id)
	a.ids.dispose(o.id)
}

// Len reports how many opaques are currently live, for tests and stats.
func (a *Arena) Len() int { return len(a.objs) }
