package ecs

import (
	"reflect"
	"slices"
	"strings"

	"github.com/kamstrup/intmap"
)

type relationInfo struct {
	typ       reflect.Type
	exclusive bool
}

type relationEdge struct {
	target  Entity
	payload any // *R
}

// relationTable holds every edge of one relation kind, indexed both ways.
type relationTable struct {
	info *relationInfo
	out  *intmap.Map[Entity, []relationEdge]
	in   *intmap.Map[Entity, []Entity]
}

func newRelationTable(info *relationInfo) *relationTable {
	return &relationTable{
		info: info,
		out:  intmap.New[Entity, []relationEdge](64),
		in:   intmap.New[Entity, []Entity](8),
	}
}

// RelationPair is a (relation kind, target, payload) triple accepted by World.Spawn.
type RelationPair struct {
	typ     reflect.Type
	target  Entity
	payload any
}

// Pair builds a relation edge to target carrying payload, for use with World.Spawn.
func Pair[R any](target Entity, payload R) RelationPair {
	p := new(R)
	*p = payload
	return RelationPair{typ: reflect.TypeFor[R](), target: target, payload: p}
}

func (w *World) table(t reflect.Type) *relationTable {
	table, ok := w.relations[t]
	if !ok {
		table = newRelationTable(w.registry.relation(t))
		w.relations[t] = table
	}
	return table
}

// checkTarget rejects a target that itself follows something: edges are one level deep.
func (t *relationTable) checkTarget(target Entity) {
	if edges, ok := t.out.Get(target); ok && len(edges) > 0 {
		invariant("%s target %s is itself a %s source", t.info.typ, target, t.info.typ)
	}
}

// checkSource rejects a source that is already some other entity's target.
func (t *relationTable) checkSource(source Entity) {
	if sources, ok := t.in.Get(source); ok && len(sources) > 0 {
		invariant("%s source %s is already a %s target", t.info.typ, source, t.info.typ)
	}
}

func (w *World) relate(source Entity, pair RelationPair) {
	if source == pair.target {
		invariant("%s cannot relate %s to itself", pair.typ, source)
	}
	table := w.table(pair.typ)
	table.checkTarget(pair.target)
	table.checkSource(source)

	edges, _ := table.out.Get(source)
	if table.info.exclusive {
		for _, edge := range edges {
			table.removeIncoming(edge.target, source)
		}
		edges = edges[:0]
	} else {
		for i, edge := range edges {
			if edge.target == pair.target {
				edges[i].payload = pair.payload
				table.out.Put(source, edges)
				return
			}
		}
	}
	edges = append(edges, relationEdge{target: pair.target, payload: pair.payload})
	table.out.Put(source, edges)

	sources, _ := table.in.Get(pair.target)
	table.in.Put(pair.target, append(sources, source))
}

func (t *relationTable) removeIncoming(target, source Entity) {
	sources, ok := t.in.Get(target)
	if !ok {
		return
	}
	sources = slices.DeleteFunc(sources, func(e Entity) bool { return e == source })
	if len(sources) == 0 {
		t.in.Del(target)
		return
	}
	t.in.Put(target, sources)
}

// dropEntity removes every edge where e is the source or the target.
func (t *relationTable) dropEntity(e Entity) {
	if edges, ok := t.out.Get(e); ok {
		for _, edge := range edges {
			t.removeIncoming(edge.target, e)
		}
		t.out.Del(e)
	}
	if sources, ok := t.in.Get(e); ok {
		for _, source := range sources {
			edges, _ := t.out.Get(source)
			edges = slices.DeleteFunc(edges, func(edge relationEdge) bool { return edge.target == e })
			if len(edges) == 0 {
				t.out.Del(source)
			} else {
				t.out.Put(source, edges)
			}
		}
		t.in.Del(e)
	}
}

func (t *relationTable) first(source Entity) (relationEdge, bool) {
	edges, ok := t.out.Get(source)
	if !ok || len(edges) == 0 {
		return relationEdge{}, false
	}
	return edges[0], true
}

func (t *relationTable) edge(source, target Entity) (relationEdge, bool) {
	edges, _ := t.out.Get(source)
	for _, edge := range edges {
		if edge.target == target {
			return edge, true
		}
	}
	return relationEdge{}, false
}

// Relate adds an R edge from source to target carrying payload. For exclusive
// relations any previous edge of source is replaced. Stale handles are ignored.
func Relate[R any](w *World, source, target Entity, payload R) bool {
	if !w.Alive(source) || !w.Alive(target) {
		return false
	}
	w.relate(source, Pair(target, payload))
	return true
}

// Unrelate removes the R edge from source to target
func Unrelate[R any](w *World, source, target Entity) bool {
	table, ok := w.relations[reflect.TypeFor[R]()]
	if !ok {
		return false
	}
	edges, _ := table.out.Get(source)
	n := len(edges)
	edges = slices.DeleteFunc(edges, func(edge relationEdge) bool { return edge.target == target })
	if len(edges) == n {
		return false
	}
	if len(edges) == 0 {
		table.out.Del(source)
	} else {
		table.out.Put(source, edges)
	}
	table.removeIncoming(target, source)
	return true
}

// TargetFor resolves the target of source's R edge. For non-exclusive relations
// the earliest edge wins.
func TargetFor[R any](w *World, source Entity) (Entity, bool) {
	table, ok := w.relations[reflect.TypeFor[R]()]
	if !ok || !w.Alive(source) {
		return Nil, false
	}
	edge, ok := table.first(source)
	return edge.target, ok
}

// PayloadFor returns the payload stored on the (source, R, target) edge
func PayloadFor[R any](w *World, source, target Entity) (*R, bool) {
	table, ok := w.relations[reflect.TypeFor[R]()]
	if !ok {
		return nil, false
	}
	edge, ok := table.edge(source, target)
	if !ok {
		return nil, false
	}
	payload, ok := edge.payload.(*R)
	return payload, ok
}

// SourcesOf returns a copy of the entities holding an R edge to target
func SourcesOf[R any](w *World, target Entity) []Entity {
	table, ok := w.relations[reflect.TypeFor[R]()]
	if !ok {
		return nil
	}
	sources, _ := table.in.Get(target)
	return slices.Clone(sources)
}

// Edge is one outgoing relation edge as seen by debugging tools.
type Edge struct {
	Kind    reflect.Type
	Target  Entity
	Payload any // *R
}

// Edges lists every outgoing edge of e across all relation kinds, ordered by kind
// name.
func (w *World) Edges(e Entity) []Edge {
	if !w.Alive(e) {
		return nil
	}
	var out []Edge
	for typ, table := range w.relations {
		edges, _ := table.out.Get(e)
		for _, edge := range edges {
			out = append(out, Edge{Kind: typ, Target: edge.target, Payload: edge.payload})
		}
	}
	slices.SortStableFunc(out, func(a, b Edge) int {
		return strings.Compare(a.Kind.String(), b.Kind.String())
	})
	return out
}
