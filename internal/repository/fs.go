package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem holding the working copy's version file.

type FileSystemRepository interface {
	afero.Fs
}
