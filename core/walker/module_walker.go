package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/models"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git", ".hg", ".svn", "__pycache__", ".venv", "venv",
	".tox", ".mypy_cache", ".pytest_cache", "node_modules",
}

type ModuleWalker interface {
	Walk(root string) (models.LocalModuleSet, error)
}

type ModuleWalkerImpl struct {
	Extension string
	Exclude   []string
}

func NewModuleWalker(ext string, exclude []string) *ModuleWalkerImpl {
	if ext == "" {
		ext = ".py"
	}
	all := append([]string{}, DefaultExcludes...)
	all = append(all, exclude...)
	return &ModuleWalkerImpl{
		Extension: ext,
		Exclude:   all,
	}
}

// Walk enumerates every source file under root and returns their dotted
// module names ("pkg/utils.py" becomes "pkg.utils"). Failures are
// *models.ScanError.
func (w *ModuleWalkerImpl) Walk(root string) (models.LocalModuleSet, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &models.ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &models.ScanError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	modules := models.NewLocalModuleSet()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if relPath != "." && w.isExcluded(relPath) {
				logger.Debug("Excluding directory: %s", relPath)
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != w.Extension {
			return nil
		}

		name := ModuleNameFromPath(relPath, w.Extension)
		modules.Add(name)
		logger.Debug("Registered module: %s", name)
		return nil
	})
	if err != nil {
		return nil, &models.ScanError{Root: root, Err: err}
	}

	logger.Debug("Indexed %d modules under %s", modules.Len(), root)
	return modules, nil
}

func (w *ModuleWalkerImpl) isExcluded(relPath string) bool {
	relPath = filepath.Clean(relPath)
	base := filepath.Base(relPath)
	for _, ex := range w.Exclude {
		ex = filepath.Clean(ex)
		if base == ex || relPath == ex {
			return true
		}
	}
	return false
}

// ModuleNameFromPath turns a root-relative file path into a dotted module name.
func ModuleNameFromPath(relPath, ext string) models.ModuleName {
	relPath = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(relPath)), ext)
	return models.ModuleName(strings.ReplaceAll(relPath, "/", "."))
}
