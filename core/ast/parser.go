package ast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/models"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	ErrFileTooLarge   = errors.New("file exceeds maximum size")
	ErrInvalidContent = errors.New("invalid content")
	ErrSyntax         = errors.New("syntax error")
)

// ImportExtractor returns the raw dependency names referenced by a file.
type ImportExtractor interface {
	Extract(path string) (*models.ParsedFile, error)
}

type PythonExtractorOption func(*PythonExtractor)

// WithMaxFileSize rejects files larger than bytes. Non-positive values are ignored.
func WithMaxFileSize(bytes int64) PythonExtractorOption {
	return func(p *PythonExtractor) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// PythonExtractor reads top-level import statements with tree-sitter's
// Python grammar. Each call builds its own parser, so a single value may be
// shared between goroutines.
type PythonExtractor struct {
	maxFileSize int64
}

func NewPythonExtractor(opts ...PythonExtractorOption) *PythonExtractor {
	p := &PythonExtractor{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract reads path and returns its imports. Every failure is a
// *models.ParseError.
func (p *PythonExtractor) Extract(path string) (*models.ParsedFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	imports, err := p.ExtractSource(path, src)
	if err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	logger.Debug("Parsed %s: %d imports %v", path, len(imports), imports)

	return &models.ParsedFile{
		Path:    path,
		Imports: imports,
	}, nil
}

// ExtractSource returns, in source order, the module of every plain import
// and "<module>.<name>" for every name of a from-import. Only statements at
// module level are considered. Relative from-imports contribute their module
// part without the leading dots; "from . import x" contributes nothing.
func (p *PythonExtractor) ExtractSource(path string, src []byte) ([]string, error) {
	if int64(len(src)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(src), p.maxFileSize)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty syntax tree", ErrInvalidContent)
	}
	if root.HasError() {
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPoint()
			return nil, fmt.Errorf("%w at line %d column %d", ErrSyntax, pos.Row+1, pos.Column+1)
		}
		return nil, ErrSyntax
	}

	imports := []string{}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			imports = append(imports, plainImports(child, src)...)
		case "import_from_statement":
			imports = append(imports, fromImports(child, src, "")...)
		case "future_import_statement":
			imports = append(imports, fromImports(child, src, "__future__")...)
		}
	}

	return imports, nil
}

// plainImports handles "import a.b" and "import a.b as c".
func plainImports(node *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			names = append(names, child.Content(src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(src))
			}
		}
	}
	return names
}

// fromImports handles "from m import x, y as z" and "from m import *".
func fromImports(node *sitter.Node, src []byte, module string) []string {
	var names []string
	var sawImport bool
	relativeOnly := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			module = ""
			relativeOnly = true
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if grandchild := child.NamedChild(j); grandchild.Type() == "dotted_name" {
					module = grandchild.Content(src)
					relativeOnly = false
				}
			}
		case "dotted_name":
			if sawImport {
				names = append(names, child.Content(src))
			} else {
				module = child.Content(src)
			}
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(src))
			}
		case "wildcard_import":
			names = append(names, "*")
		}
	}

	if relativeOnly || module == "" {
		return nil
	}

	imports := make([]string, 0, len(names))
	for _, name := range names {
		imports = append(imports, module+"."+name)
	}
	return imports
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstErrorNode(child); bad != nil {
			return bad
		}
	}
	return nil
}
