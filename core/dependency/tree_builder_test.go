package dependency

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/pytree/core/ast"
	"github.com/tristendillon/pytree/core/models"
)

// project writes name -> source files into a fresh directory and returns it.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	return root
}

func build(t *testing.T, root, entry string, opts ...TreeBuilderOption) (*Result, error) {
	t.Helper()
	builder := NewTreeBuilder(ast.NewPythonExtractor(), opts...)
	return builder.Build(filepath.Join(root, entry), root)
}

func warningStrings(result *Result) []string {
	out := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		out = append(out, w.String())
	}
	return out
}

func TestBuild_DirectCycle(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	assert.Equal(t, "a.py\n└── b.py\n", result.Tree.String())
	assert.Equal(t, []string{"Circular dependency! Skipping: b.py <> a.py"}, warningStrings(result))
}

func TestBuild_ExternalImportsIgnored(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import os\nimport b\n",
		"b.py": "import os\nfrom collections import OrderedDict\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	assert.Equal(t, "a.py\n└── b.py\n", result.Tree.String())
	assert.Empty(t, result.Warnings)
	assert.NotContains(t, result.Tree.Modules(), models.ModuleName("os"))
}

func TestBuild_DuplicateImportsCollapse(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\nfrom b import X\nimport b\n",
		"b.py": "X = 1\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	require.Len(t, result.Tree.Root.Children, 1)
	assert.Equal(t, models.ModuleName("b"), result.Tree.Root.Children[0].Name)
	assert.Equal(t, "a.py\n└── b.py\n", result.Tree.String())
}

func TestBuild_AcyclicTreeKeepsImportOrder(t *testing.T) {
	root := project(t, map[string]string{
		"main.py":     "import utils\nimport models\nimport json\n",
		"utils.py":    "from helpers import slugify\nimport io_tools\n",
		"helpers.py":  "",
		"io_tools.py": "import helpers\n",
		"models.py":   "from utils import thing\n",
	})

	result, err := build(t, root, "main.py")
	require.NoError(t, err)

	want := "main.py\n" +
		"├── utils.py\n" +
		"│   ├── helpers.py\n" +
		"│   └── io_tools.py\n" +
		"│       └── helpers.py\n" +
		"└── models.py\n" +
		"    └── utils.py\n" +
		"        ├── helpers.py\n" +
		"        └── io_tools.py\n" +
		"            └── helpers.py\n"
	assert.Equal(t, want, result.Tree.String())
	assert.Empty(t, result.Warnings)
}

func TestBuild_LongCycleReportedOncePerEdge(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\nimport d\n",
		"b.py": "import c\n",
		"c.py": "import a\n",
		"d.py": "import b\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	want := "a.py\n" +
		"├── b.py\n" +
		"│   └── c.py\n" +
		"└── d.py\n" +
		"    └── b.py\n" +
		"        └── c.py\n"
	assert.Equal(t, want, result.Tree.String())
	assert.Equal(t, []string{"Circular dependency! Skipping: c.py <> a.py"}, warningStrings(result))
}

func TestBuild_DistinctCycleEdgesEachReported(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\nimport c\n",
		"b.py": "import a\nimport c\n",
		"c.py": "import b\nimport a\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	want := "a.py\n" +
		"├── b.py\n" +
		"│   └── c.py\n" +
		"└── c.py\n" +
		"    └── b.py\n"
	assert.Equal(t, want, result.Tree.String())
	assert.Equal(t, []string{
		"Circular dependency! Skipping: b.py <> a.py",
		"Circular dependency! Skipping: c.py <> b.py",
		"Circular dependency! Skipping: c.py <> a.py",
		"Circular dependency! Skipping: b.py <> c.py",
	}, warningStrings(result))
}

func TestBuild_SelfImport(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import a\n",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)

	assert.Equal(t, "a.py\n", result.Tree.String())
	assert.Equal(t, []string{"Circular dependency! Skipping: a.py <> a.py"}, warningStrings(result))
}

func TestBuild_DottedImportsReduceToTopLevel(t *testing.T) {
	root := project(t, map[string]string{
		"a.py":     "import b.sub\nfrom b.sub import Thing\n",
		"b.py":     "",
		"pkg/x.py": "",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)
	assert.Equal(t, "a.py\n└── b.py\n", result.Tree.String())
}

func TestBuild_NestedPackagesNotResolved(t *testing.T) {
	// Only "pkg.util" is indexed, so the reduced name "pkg" is not local.
	root := project(t, map[string]string{
		"a.py":        "from pkg.util import helper\n",
		"pkg/util.py": "",
	})

	result, err := build(t, root, "a.py")
	require.NoError(t, err)
	assert.Equal(t, "a.py\n", result.Tree.String())
}

func TestBuild_Idempotent(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\nimport c\n",
		"b.py": "import c\nimport a\n",
		"c.py": "import b\n",
	})

	first, err := build(t, root, "a.py")
	require.NoError(t, err)
	second, err := build(t, root, "a.py")
	require.NoError(t, err)

	assert.Equal(t, first.Tree.String(), second.Tree.String())
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestBuild_ParseErrorAborts(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "def broken(:\n",
	})

	result, err := build(t, root, "a.py")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrParse)

	var parseErr *models.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, filepath.Join(root, "b.py"), parseErr.Path)
}

func TestBuild_ResolutionErrorAborts(t *testing.T) {
	// "b" is local because of the index, but there is no sibling b.py next to sub/a.py.
	root := project(t, map[string]string{
		"b.py":     "",
		"sub/a.py": "import b\n",
	})

	builder := NewTreeBuilder(ast.NewPythonExtractor())
	result, err := builder.Build(filepath.Join(root, "sub", "a.py"), root)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrResolution)

	var resErr *models.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, models.ModuleName("b"), resErr.Module)
	assert.Equal(t, filepath.Join(root, "sub", "b.py"), resErr.Path)
}

func TestBuild_ScanErrorAborts(t *testing.T) {
	root := t.TempDir()
	builder := NewTreeBuilder(ast.NewPythonExtractor())

	_, err := builder.Build(filepath.Join(root, "a.py"), filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, models.ErrScan)
}

func TestBuild_MaxDepth(t *testing.T) {
	root := project(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import c\n",
		"c.py": "import d\n",
		"d.py": "",
	})

	_, err := build(t, root, "a.py", WithMaxDepth(3))
	require.NoError(t, err)

	_, err = build(t, root, "a.py", WithMaxDepth(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDepthLimit)
}

type stubExtractor map[string][]string

func (s stubExtractor) Extract(path string) (*models.ParsedFile, error) {
	imports, ok := s[filepath.Base(path)]
	if !ok {
		return nil, errors.New("no stub for " + path)
	}
	return &models.ParsedFile{Path: path, Imports: imports}, nil
}

func TestBuild_StackRestoredAfterCycle(t *testing.T) {
	// After b's subtree returns, b is off the path, so c may import it again.
	root := project(t, map[string]string{
		"a.py": "", "b.py": "", "c.py": "",
	})
	extractor := stubExtractor{
		"a.py": {"b", "c"},
		"b.py": {"a"},
		"c.py": {"b"},
	}

	result, err := NewTreeBuilder(extractor).Build(filepath.Join(root, "a.py"), root)
	require.NoError(t, err)

	want := "a.py\n" +
		"├── b.py\n" +
		"└── c.py\n" +
		"    └── b.py\n"
	assert.Equal(t, want, result.Tree.String())
	assert.Equal(t, []string{"Circular dependency! Skipping: b.py <> a.py"}, warningStrings(result))
}

func TestBuild_ForeignExtractorErrorsBecomeParseErrors(t *testing.T) {
	root := project(t, map[string]string{"a.py": ""})

	_, err := NewTreeBuilder(stubExtractor{}).Build(filepath.Join(root, "a.py"), root)
	assert.ErrorIs(t, err, models.ErrParse)
}

func TestBuild_CustomExtension(t *testing.T) {
	root := project(t, map[string]string{
		"a.pyi": "import b\n",
		"b.pyi": "",
		"b.py":  "",
	})

	result, err := build(t, root, "a.pyi", WithExtension(".pyi"))
	require.NoError(t, err)
	assert.Equal(t, "a.pyi\n└── b.pyi\n", result.Tree.String())
}
