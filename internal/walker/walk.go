// Package walker enumerates the regular files under a directory tree.
package walker

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/infracollect/filesearch/internal/engine"
	"github.com/spf13/afero"
)

// Walk returns a single-pass iterator over every regular file under root,
// depth-first and in pre-order. Directories are never yielded.
//
// The walk is lazy: each file is handed to the consumer before the next
// directory entry is looked at. A root that cannot be stat'ed, is not a
// directory, or a directory that cannot be listed yields a single error and
// ends the sequence.
//
// Symbolic links are followed. A link to a directory that is already being
// walked higher up the current path is not entered again, so link cycles end.
// Dangling links and entries that are neither regular files nor directories
// are skipped.
func Walk(fsys afero.Fs, root string) iter.Seq2[engine.File, error] {
	return func(yield func(engine.File, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			yield(engine.File{}, fmt.Errorf("failed to resolve root %s: %w", root, err))
			return
		}

		info, err := fsys.Stat(absRoot)
		if err != nil {
			yield(engine.File{}, fmt.Errorf("failed to stat root %s: %w", absRoot, err))
			return
		}
		if !info.IsDir() {
			yield(engine.File{}, fmt.Errorf("root %s is not a directory", absRoot))
			return
		}

		w := &walk{fs: fsys, root: absRoot, yield: yield}
		w.dir(absRoot, info)
	}
}

type walk struct {
	fs    afero.Fs
	root  string
	yield func(engine.File, error) bool

	// ancestors holds the directories on the current descent path.
	ancestors []os.FileInfo
}

// dir visits every entry of the directory at path. It reports false once the
// walk must stop, either because the consumer broke out or on a listing error.
func (w *walk) dir(path string, info os.FileInfo) bool {
	if w.onPath(info) {
		return true
	}
	w.ancestors = append(w.ancestors, info)
	defer func() { w.ancestors = w.ancestors[:len(w.ancestors)-1] }()

	entries, err := afero.ReadDir(w.fs, path)
	if err != nil {
		w.yield(engine.File{}, fmt.Errorf("failed to read directory %s: %w", path, err))
		return false
	}

	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())

		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := w.fs.Stat(full)
			if err != nil {
				continue
			}
			entry = target
		}

		switch mode := entry.Mode(); {
		case mode.IsDir():
			if !w.dir(full, entry) {
				return false
			}
		case mode.IsRegular():
			if !w.file(full, entry) {
				return false
			}
		}
	}

	return true
}

// onPath reports whether info is one of the directories currently being
// walked. os.SameFile only recognises infos from the os package, which is
// the only afero backend with symbolic links.
func (w *walk) onPath(info os.FileInfo) bool {
	for _, ancestor := range w.ancestors {
		if os.SameFile(ancestor, info) {
			return true
		}
	}
	return false
}

func (w *walk) file(path string, info os.FileInfo) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return w.yield(engine.File{Path: path, RelPath: rel, Info: info}, nil)
}
