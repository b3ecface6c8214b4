package chart

import (
	"slices"

	"github.com/google/uuid"
)

// Scope is a naming registry. Names must be unique across a scope and all of
// its ancestors; each name maps to the id of the element that owns it.
type Scope struct {
	parent *Scope
	names  map[string]uuid.UUID
}

// NewScope creates an empty scope nested under parent (which may be nil).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		names:  make(map[string]uuid.UUID),
	}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Lookup resolves name in this scope or any ancestor.
func (s *Scope) Lookup(name string) (uuid.UUID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Contains reports whether name is registered in this scope or any ancestor.
func (s *Scope) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Register binds name to id locally. Registering the same pair twice is a no-op.
func (s *Scope) Register(name string, id uuid.UUID) error {
	if owner, ok := s.Lookup(name); ok {
		if owner == id {
			return nil
		}
		return &NameConflictError{Name: name}
	}
	s.names[name] = id
	return nil
}

// Unregister removes a local entry. Ancestor entries are never touched.
func (s *Scope) Unregister(name string) {
	delete(s.names, name)
}

// Rename moves a local entry to a new key, keeping the id it resolves to.
func (s *Scope) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if s.Contains(newName) {
		return &NameConflictError{Name: newName}
	}
	id, ok := s.names[oldName]
	if !ok {
		return nil
	}
	delete(s.names, oldName)
	s.names[newName] = id
	return nil
}

// Names returns the local names in lexical order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of local entries.
func (s *Scope) Len() int {
	return len(s.names)
}

func (s *Scope) clear() {
	clear(s.names)
}

func (s *Scope) clone(parent *Scope) *Scope {
	c := NewScope(parent)
	for name, id := range s.names {
		c.names[name] = id
	}
	return c
}
