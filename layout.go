package minivsfs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Format-wide constants, fixed by the on-disk layout.
const (
	BlockSize       = 4096
	InodeSize       = 128
	DirentSize      = 64
	DirentsPerBlock = BlockSize / DirentSize // 64
	MaxDirect       = 12
	MaxFileBlocks   = MaxDirect
	RootInode       = 1

	SuperblockMagic  = 0x4D565346 // "MVSF"
	FormatVersion    = 1
	SuperblockSize   = 116 // logical field width; checksum itself lives at block offset 4092
	InodeBitmapStart = 1
	InodeBitmapBlks  = 1
	DataBitmapStart  = 2
	DataBitmapBlks   = 1
	InodeTableStart  = 3

	minSizeKiB  = 180
	maxSizeKiB  = 4096
	minInodes   = 128
	maxInodes   = 512
	dirTypeFile = 1
	dirTypeDir  = 2
)

// Layout is the complete set of derived superblock fields for a given
// (size_kib, inode_count) pair, deterministic modulo mtime_epoch.
type Layout struct {
	BlockSize         uint32
	TotalBlocks       uint64
	InodeCount        uint64
	InodeBitmapStart  uint64
	InodeBitmapBlocks uint64
	DataBitmapStart   uint64
	DataBitmapBlocks  uint64
	InodeTableStart   uint64
	InodeTableBlocks  uint64
	DataRegionStart   uint64
	DataRegionBlocks  uint64
	RootInode         uint64
}

// PlanLayout validates (sizeKiB, inodeCount) against the constraints of
// spec §4.2 and derives the complete block layout. On any constraint
// violation it returns every violated constraint aggregated into one error
// wrapping ErrConfiguration, rather than stopping at the first.
func PlanLayout(sizeKiB, inodeCount uint64) (Layout, error) {
	var merr *multierror.Error

	if sizeKiB < minSizeKiB || sizeKiB > maxSizeKiB {
		merr = multierror.Append(merr, fmt.Errorf("size-kib %d out of range [%d, %d]", sizeKiB, minSizeKiB, maxSizeKiB))
	}
	if sizeKiB%4 != 0 {
		merr = multierror.Append(merr, fmt.Errorf("size-kib %d is not a multiple of 4", sizeKiB))
	}
	if inodeCount < minInodes || inodeCount > maxInodes {
		merr = multierror.Append(merr, fmt.Errorf("inodes %d out of range [%d, %d]", inodeCount, minInodes, maxInodes))
	}
	if merr != nil {
		merr.ErrorFormat = singleLineErrorFormat
		return Layout{}, fmt.Errorf("%w: %s", ErrConfiguration, merr.Error())
	}

	totalBlocks := sizeKiB * 1024 / BlockSize
	inodeTableBlocks := ceilDiv(inodeCount*InodeSize, BlockSize)
	dataRegionStart := uint64(InodeTableStart) + inodeTableBlocks

	if dataRegionStart >= totalBlocks {
		return Layout{}, fmt.Errorf("%w: data region start %d does not leave room in %d total blocks", ErrConfiguration, dataRegionStart, totalBlocks)
	}

	l := Layout{
		BlockSize:         BlockSize,
		TotalBlocks:       totalBlocks,
		InodeCount:        inodeCount,
		InodeBitmapStart:  InodeBitmapStart,
		InodeBitmapBlocks: InodeBitmapBlks,
		DataBitmapStart:   DataBitmapStart,
		DataBitmapBlocks:  DataBitmapBlks,
		InodeTableStart:   InodeTableStart,
		InodeTableBlocks:  inodeTableBlocks,
		DataRegionStart:   dataRegionStart,
		DataRegionBlocks:  totalBlocks - dataRegionStart,
		RootInode:         RootInode,
	}

	Logger.Printf("minivsfs: planned layout total_blocks=%d inode_table_blocks=%d data_region_start=%d data_region_blocks=%d",
		l.TotalBlocks, l.InodeTableBlocks, l.DataRegionStart, l.DataRegionBlocks)

	return l, nil
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// singleLineErrorFormat renders a multierror.Error as a semicolon-joined
// single line, since these configuration errors are ultimately surfaced as a
// single wrapped error to the CLI layer.
func singleLineErrorFormat(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}
