package ast

import (
	"fmt"

	"github.com/dspeclang/dspec/pkg/token"
)

// RelationKind identifies one of the ten relation variants.
type RelationKind int

// Relation kinds.
const (
	RelBelongsTo RelationKind = iota
	RelHasMany
	RelHasOne
	RelBelongsToMany
	RelHasManyThrough
	RelMorphTo
	RelMorphMany
	RelMorphOne
	RelMorphToMany
	RelMorphedByMany
)

// relationKinds maps source spellings to relation kinds.
var relationKinds = map[string]RelationKind{
	"belongsTo":      RelBelongsTo,
	"hasMany":        RelHasMany,
	"hasOne":         RelHasOne,
	"belongsToMany":  RelBelongsToMany,
	"hasManyThrough": RelHasManyThrough,
	"morphTo":        RelMorphTo,
	"morphMany":      RelMorphMany,
	"morphOne":       RelMorphOne,
	"morphToMany":    RelMorphToMany,
	"morphedByMany":  RelMorphedByMany,
}

// relationNames is the reverse of relationKinds.
var relationNames = func() map[RelationKind]string {
	m := make(map[RelationKind]string, len(relationKinds))
	for name, kind := range relationKinds {
		m[kind] = name
	}
	return m
}()

// String returns the source spelling of the relation kind.
func (k RelationKind) String() string {
	if name, ok := relationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("relation(%d)", k)
}

// LookupRelationKind returns the relation kind for a source spelling.
func LookupRelationKind(name string) (RelationKind, bool) {
	k, ok := relationKinds[name]
	return k, ok
}

// Arity returns the fixed argument count of the relation kind.
func (k RelationKind) Arity() int {
	switch k {
	case RelMorphTo:
		return 0
	case RelBelongsTo, RelHasMany, RelHasOne:
		return 1
	case RelBelongsToMany, RelHasManyThrough, RelMorphMany, RelMorphOne:
		return 2
	case RelMorphToMany, RelMorphedByMany:
		return 3
	default:
		return 0
	}
}

// IsMorph returns true for the polymorphic relation kinds.
func (k RelationKind) IsMorph() bool {
	switch k {
	case RelMorphTo, RelMorphMany, RelMorphOne, RelMorphToMany, RelMorphedByMany:
		return true
	}
	return false
}

// Relation is a named association between two declarations.
//
// Args are positional and interpreted per kind:
//
//	belongsTo/hasMany/hasOne:       target
//	belongsToMany:                  target, pivot
//	hasManyThrough:                 target, through
//	morphOne/morphMany:             target, morphName
//	morphToMany/morphedByMany:      target, morphName, pivot
//	morphTo:                        (none)
type Relation struct {
	Name string
	Kind RelationKind
	Args []string
	Span token.Span
}

// Target returns the target declaration argument, or "" for morphTo.
func (r *Relation) Target() string {
	if r.Kind == RelMorphTo || len(r.Args) == 0 {
		return ""
	}
	return r.Args[0]
}

// Pivot returns the pivot/through declaration argument, or "".
func (r *Relation) Pivot() string {
	switch r.Kind {
	case RelBelongsToMany, RelHasManyThrough:
		if len(r.Args) > 1 {
			return r.Args[1]
		}
	case RelMorphToMany, RelMorphedByMany:
		if len(r.Args) > 2 {
			return r.Args[2]
		}
	}
	return ""
}

// MorphName returns the morph discriminator argument, or "".
func (r *Relation) MorphName() string {
	switch r.Kind {
	case RelMorphMany, RelMorphOne, RelMorphToMany, RelMorphedByMany:
		if len(r.Args) > 1 {
			return r.Args[1]
		}
	}
	return ""
}
