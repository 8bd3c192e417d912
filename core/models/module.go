package models

import (
	"sort"
	"strings"
)

// ModuleName is either a bare stem ("utils") or a dotted path relative to
// the scan root ("pkg.utils").
type ModuleName string

// Reduce returns the top-level component, the part before the first dot.
func (m ModuleName) Reduce() ModuleName {
	if i := strings.IndexByte(string(m), '.'); i >= 0 {
		return m[:i]
	}
	return m
}

func (m ModuleName) String() string {
	return string(m)
}

// FileName returns the module's file name for the given source extension.
func (m ModuleName) FileName(ext string) string {
	return string(m) + ext
}

// LocalModuleSet is a snapshot of the modules found under a project root.
type LocalModuleSet map[ModuleName]struct{}

func NewLocalModuleSet(names ...ModuleName) LocalModuleSet {
	set := make(LocalModuleSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s LocalModuleSet) Contains(name ModuleName) bool {
	_, ok := s[name]
	return ok
}

func (s LocalModuleSet) Add(name ModuleName) {
	s[name] = struct{}{}
}

func (s LocalModuleSet) Len() int {
	return len(s)
}

// Sorted returns the module names in lexical order.
func (s LocalModuleSet) Sorted() []ModuleName {
	names := make([]ModuleName, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
