package models

import "fmt"

// CycleEdge is a back-edge: From was being expanded when it imported To,
// which was already on the active path.
type CycleEdge struct {
	From ModuleName
	To   ModuleName
}

// CircularEdgeSet records edges that were already reported.
type CircularEdgeSet map[CycleEdge]struct{}

// Add records edge and reports whether it was new.
func (s CircularEdgeSet) Add(edge CycleEdge) bool {
	if _, ok := s[edge]; ok {
		return false
	}
	s[edge] = struct{}{}
	return true
}

func (s CircularEdgeSet) Contains(edge CycleEdge) bool {
	_, ok := s[edge]
	return ok
}

type CycleWarning struct {
	CycleEdge
	Extension string
}

func (w CycleWarning) String() string {
	return fmt.Sprintf("Circular dependency! Skipping: %s <> %s",
		w.From.FileName(w.Extension), w.To.FileName(w.Extension))
}
