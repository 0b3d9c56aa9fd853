package minivsfs

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// allocator wraps the inode and data bitmaps, each a go-bitmap.Bitmap view
// directly over its one-block region of the image buffer: bitmap.Bitmap is
// a []byte alias, so Get/Set mutate the image in place with no copy back.
type allocator struct {
	inodeBits bitmap.Bitmap
	dataBits  bitmap.Bitmap
	inodes    uint64
	dataBlks  uint64
}

func newAllocator(inodeBitmapBlock, dataBitmapBlock []byte, inodeCount, dataRegionBlocks uint64) allocator {
	return allocator{
		inodeBits: bitmap.Bitmap(inodeBitmapBlock),
		dataBits:  bitmap.Bitmap(dataBitmapBlock),
		inodes:    inodeCount,
		dataBlks:  dataRegionBlocks,
	}
}

// AllocateInode returns the lowest-numbered free inode (1-based), marking
// its bit set. ErrNoFreeInode if the inode bitmap has no free bit in
// [0, inodes).
func (a allocator) AllocateInode() (uint64, error) {
	for i := uint64(0); i < a.inodes; i++ {
		if !a.inodeBits.Get(int(i)) {
			a.inodeBits.Set(int(i), true)
			return i + 1, nil
		}
	}
	return 0, ErrNoFreeInode
}

// FreeInode clears inum's bit in the inode bitmap.
func (a allocator) FreeInode(inum uint64) {
	a.inodeBits.Set(int(inum-1), false)
}

// AllocateDataBlocks finds n free data-region bits and marks all of them
// set, all-or-nothing: if fewer than n bits are free, none are marked and
// ErrNoFreeSpace is returned. Returned addresses are absolute block numbers
// (dataRegionStart + bit index) in ascending order.
func (a allocator) AllocateDataBlocks(dataRegionStart uint64, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	free := make([]uint64, 0, n)
	for i := uint64(0); i < a.dataBlks && len(free) < n; i++ {
		if !a.dataBits.Get(int(i)) {
			free = append(free, i)
		}
	}
	if len(free) < n {
		return nil, fmt.Errorf("%w: need %d blocks, %d free", ErrNoFreeSpace, n, len(free))
	}
	addrs := make([]uint64, 0, n)
	for _, i := range free {
		a.dataBits.Set(int(i), true)
		addrs = append(addrs, dataRegionStart+i)
	}
	return addrs, nil
}
