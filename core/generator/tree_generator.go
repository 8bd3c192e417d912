package generator

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/tristendillon/pytree/core/ast"
	"github.com/tristendillon/pytree/core/cache"
	"github.com/tristendillon/pytree/core/config"
	"github.com/tristendillon/pytree/core/dependency"
	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/walker"
)

// TreeGenerator wires config, the module index, the parse cache and the
// tree builder for one entry file, and prints the results.
type TreeGenerator struct {
	EntryFile string
	RootDir   string
	Config    *config.Config

	out     io.Writer
	cache   *cache.FileCache
	builder *dependency.TreeBuilder
}

func NewTreeGenerator(entryFile, rootDir string, cfg *config.Config, out io.Writer) (*TreeGenerator, error) {
	entryAbs, err := filepath.Abs(entryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry file %s: %w", entryFile, err)
	}

	if rootDir == "" {
		rootDir = filepath.Dir(entryAbs)
	}
	rootAbs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
	}

	fileCache, err := cache.NewFileCache(&cache.CacheConfig{
		MaxEntries:    cfg.Cache.MaxEntries,
		EnableMetrics: true,
	})
	if err != nil {
		return nil, err
	}

	extractor := cache.NewCachedExtractor(ast.NewPythonExtractor(), fileCache)
	builder := dependency.NewTreeBuilder(extractor,
		dependency.WithExtension(cfg.Extension),
		dependency.WithMaxDepth(cfg.MaxDepth),
		dependency.WithWalker(walker.NewModuleWalker(cfg.Extension, cfg.Exclude)),
	)

	return &TreeGenerator{
		EntryFile: entryAbs,
		RootDir:   rootAbs,
		Config:    cfg,
		out:       out,
		cache:     fileCache,
		builder:   builder,
	}, nil
}

// Cache exposes the parse cache so the watcher can invalidate entries.
func (tg *TreeGenerator) Cache() *cache.FileCache {
	return tg.cache
}

// GenerateTree builds the tree and writes cycle warnings, then the tree, to
// the generator's output. Nothing is written when the build fails.
func (tg *TreeGenerator) GenerateTree() error {
	logger.Debug("Generating dependency tree for %s (root %s)", tg.EntryFile, tg.RootDir)

	result, err := tg.builder.Build(tg.EntryFile, tg.RootDir)
	if err != nil {
		return fmt.Errorf("failed to build dependency tree: %w", err)
	}

	for _, warning := range result.Warnings {
		if _, err := fmt.Fprintln(tg.out, logger.Colorize(logger.ColorRed, warning.String())); err != nil {
			return fmt.Errorf("failed to write warning: %w", err)
		}
	}

	if err := result.Tree.Print(tg.out); err != nil {
		return fmt.Errorf("failed to print dependency tree: %w", err)
	}

	logger.Debug("Printed %d modules with %d circular dependencies", len(result.Tree.Modules()), len(result.Warnings))
	tg.cache.LogStats()

	return nil
}
