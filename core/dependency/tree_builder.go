package dependency

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/pytree/core/ast"
	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/models"
	"github.com/tristendillon/pytree/core/walker"
)

// Result is the outcome of one build. Warnings are in detection order.
type Result struct {
	Tree     *models.DependencyTree
	Warnings []models.CycleWarning
}

type TreeBuilderOption func(*TreeBuilder)

func WithExtension(ext string) TreeBuilderOption {
	return func(b *TreeBuilder) {
		if ext != "" {
			b.extension = ext
		}
	}
}

// WithMaxDepth aborts the build with a *models.DepthLimitError when an
// import chain gets deeper than depth. Zero disables the limit.
func WithMaxDepth(depth int) TreeBuilderOption {
	return func(b *TreeBuilder) {
		if depth >= 0 {
			b.maxDepth = depth
		}
	}
}

func WithWalker(w walker.ModuleWalker) TreeBuilderOption {
	return func(b *TreeBuilder) {
		b.walker = w
	}
}

// TreeBuilder walks the local imports of an entry file depth first.
type TreeBuilder struct {
	extractor ast.ImportExtractor
	walker    walker.ModuleWalker
	extension string
	maxDepth  int
}

func NewTreeBuilder(extractor ast.ImportExtractor, opts ...TreeBuilderOption) *TreeBuilder {
	b := &TreeBuilder{
		extractor: extractor,
		extension: ".py",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.walker == nil {
		b.walker = walker.NewModuleWalker(b.extension, nil)
	}
	return b
}

// traversal holds the state shared by every level of one build.
type traversal struct {
	builder  *TreeBuilder
	modules  models.LocalModuleSet
	stack    map[models.ModuleName]struct{}
	reported models.CircularEdgeSet
	warnings []models.CycleWarning
}

// Build indexes rootPath, then expands entryFile. Imports are reduced to
// their top-level name and resolved as sibling files of the importer. An
// import of a module already on the current path is a cycle: it is
// reported once per (importer, imported) pair and left out of the tree.
func (b *TreeBuilder) Build(entryFile, rootPath string) (*Result, error) {
	modules, err := b.walker.Walk(rootPath)
	if err != nil {
		return nil, err
	}

	entry := models.ModuleName(strings.TrimSuffix(filepath.Base(entryFile), filepath.Ext(entryFile)))
	tree := models.NewDependencyTree(entry, b.extension)

	t := &traversal{
		builder:  b,
		modules:  modules,
		stack:    map[models.ModuleName]struct{}{entry: {}},
		reported: models.CircularEdgeSet{},
		warnings: []models.CycleWarning{},
	}

	logger.Debug("Building dependency tree for %s (%d local modules)", entryFile, modules.Len())

	if err := t.expand(entryFile, tree.Root); err != nil {
		return nil, err
	}

	return &Result{
		Tree:     tree,
		Warnings: t.warnings,
	}, nil
}

func (t *traversal) expand(file string, node *models.DependencyNode) error {
	parsed, err := t.builder.extractor.Extract(file)
	if err != nil {
		var parseErr *models.ParseError
		if errors.As(err, &parseErr) {
			return err
		}
		return &models.ParseError{Path: file, Err: err}
	}

	for _, raw := range parsed.UniqueImports() {
		name := models.ModuleName(raw).Reduce()

		if !t.modules.Contains(name) {
			continue
		}

		if _, onPath := t.stack[name]; onPath {
			t.reportCycle(node.Name, name)
			continue
		}

		if err := t.descend(file, node, name); err != nil {
			return err
		}
	}

	return nil
}

// descend expands name below node. name is on the stack exactly for the
// duration of the call.
func (t *traversal) descend(importer string, node *models.DependencyNode, name models.ModuleName) error {
	if limit := t.builder.maxDepth; limit > 0 && node.Depth+1 > limit {
		return &models.DepthLimitError{Module: name, Limit: limit}
	}

	t.stack[name] = struct{}{}
	defer delete(t.stack, name)

	child := node.AddChild(name)
	childFile := filepath.Join(filepath.Dir(importer), name.FileName(t.builder.extension))

	info, err := os.Stat(childFile)
	if err == nil && info.IsDir() {
		err = fmt.Errorf("is a directory")
	}
	if err != nil {
		return &models.ResolutionError{Module: name, Importer: importer, Path: childFile, Err: err}
	}

	return t.expand(childFile, child)
}

func (t *traversal) reportCycle(from, to models.ModuleName) {
	edge := models.CycleEdge{From: from, To: to}
	if !t.reported.Add(edge) {
		return
	}

	warning := models.CycleWarning{CycleEdge: edge, Extension: t.builder.extension}
	t.warnings = append(t.warnings, warning)
	logger.Debug("Cycle edge %s -> %s", from, to)
}
