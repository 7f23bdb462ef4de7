package shell

import (
	"errors"

	"github.com/psatala/vdisk/vdfs"
)

// messageFor maps an engine sentinel error to the original interpreter's
// diagnostic wording. Anything unrecognized falls back to err.Error().
func messageFor(err error) string {
	switch {
	case errors.Is(err, vdfs.ErrNoFreeInode):
		return "No free i-node found (too many files)!"
	case errors.Is(err, vdfs.ErrNoFreeBlock):
		return "No free block found (not enough free space)!"
	case errors.Is(err, vdfs.ErrDirectoryFull):
		return "Directory already full!"
	case errors.Is(err, vdfs.ErrNotFound):
		return "No such file exists!"
	case errors.Is(err, vdfs.ErrNotDirectory):
		return "No such directory exists!"
	case errors.Is(err, vdfs.ErrIsDirectory):
		return "Cannot perform this operation on a directory!"
	case errors.Is(err, vdfs.ErrShortRead):
		return "Could not read the entire block!"
	case errors.Is(err, vdfs.ErrFileTooLarge):
		return "File already at maximum size!"
	case errors.Is(err, vdfs.ErrInvalidPath):
		return "Invalid path!"
	default:
		return err.Error()
	}
}
