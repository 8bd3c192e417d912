package models

// ParsedFile holds the raw dependency names of one source file, in source
// order. Plain imports contribute the module name, from-imports contribute
// "<module>.<name>".
type ParsedFile struct {
	Path    string
	Imports []string
}

// UniqueImports drops repeated import strings, keeping the first occurrence.
func (pf *ParsedFile) UniqueImports() []string {
	seen := make(map[string]struct{}, len(pf.Imports))
	unique := make([]string, 0, len(pf.Imports))
	for _, imp := range pf.Imports {
		if _, ok := seen[imp]; ok {
			continue
		}
		seen[imp] = struct{}{}
		unique = append(unique, imp)
	}
	return unique
}
