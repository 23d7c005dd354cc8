package engine

import "os"

// File is a regular file discovered under a scan root.
type File struct {
	// Path is the absolute path of the file, using OS separators.
	Path string
	// RelPath is Path relative to the scan root.
	RelPath string
	// Info is the file information captured when the file was discovered.
	Info os.FileInfo
}
