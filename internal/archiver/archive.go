package archiver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/infracollect/filesearch/internal/engine"
	"github.com/spf13/afero"
)

// EntryName returns the archive entry name for path, which must lie under root.
//
// The root prefix is stripped from path, separators are turned into forward
// slashes and leading slashes are removed. Names that would escape the archive
// root are rejected.
func EntryName(root, path string) (string, error) {
	if root == "" || !strings.HasPrefix(path, root) {
		return "", fmt.Errorf("%s is not under root %s", path, root)
	}

	name := path[len(root):]
	if name != "" && !isSeparator(root[len(root)-1]) && !isSeparator(name[0]) {
		return "", fmt.Errorf("%s is not under root %s", path, root)
	}

	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", fmt.Errorf("%s does not name a file under root %s", path, root)
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", fmt.Errorf("entry name %q escapes root %s", name, root)
		}
	}

	return name, nil
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// Archive adds every file to a, in order, under its name relative to root,
// then closes a. The first failure aborts the remaining entries; a is closed
// on every path.
func Archive(ctx context.Context, fsys afero.Fs, a engine.Archiver, root string, files []engine.File) (err error) {
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	for _, file := range files {
		name, err := EntryName(absRoot, file.Path)
		if err != nil {
			return fmt.Errorf("failed to name archive entry: %w", err)
		}

		if err := addFile(ctx, fsys, a, name, file.Path); err != nil {
			return fmt.Errorf("failed to archive %s: %w", file.Path, err)
		}
	}

	return nil
}

func addFile(ctx context.Context, fsys afero.Fs, a engine.Archiver, name, path string) (err error) {
	src, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	return a.AddFile(ctx, name, info, src)
}
