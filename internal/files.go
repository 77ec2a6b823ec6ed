package internal

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BamFilesInDirectory returns the names of all files in the given
// directory that carry the given extension, sorted by name. It does
// not descend into subdirectories.
func BamFilesInDirectory(dir, ext string) (files []string, err error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := f.Close()
		if err == nil {
			err = nerr
		}
	}()
	names, err := f.Readdirnames(0)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if strings.HasSuffix(name, ext) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}
