package minivsfs

import "errors"

// Package-specific sentinel errors, usable with errors.Is(), one for each of
// the format's error kinds except I/O: I/O failures are returned as the
// standard library's own os/io errors.
var (
	// ErrConfiguration is returned for out-of-range or missing layout parameters.
	ErrConfiguration = errors.New("minivsfs: invalid configuration")

	// ErrBadImage is returned when an input image fails magic/version/size/CRC
	// validation.
	ErrBadImage = errors.New("minivsfs: bad image")

	// ErrNoFreeInode is returned when the inode bitmap has no clear bit left.
	ErrNoFreeInode = errors.New("minivsfs: no free inode")

	// ErrNoFreeSpace is returned when the data bitmap has fewer free blocks
	// than requested.
	ErrNoFreeSpace = errors.New("minivsfs: no free space")

	// ErrFileTooLarge is returned when a file needs more than 12 direct blocks.
	ErrFileTooLarge = errors.New("minivsfs: file too large for direct blocks")

	// ErrDirectoryFull is returned when the root directory's single block
	// already holds 64 entries.
	ErrDirectoryFull = errors.New("minivsfs: directory full")
)
