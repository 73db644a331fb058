package restyutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemOutput writes each recorded exchange to its own file in a
// directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates `dir` if needed. Files from earlier runs are
// kept, ids are prefixed with the creation time so they do not collide.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, fmt.Errorf("create record directory: %w", err)
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) error {
	return os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
}
