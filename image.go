package minivsfs

import (
	"fmt"
	"os"
)

// Image is the in-memory, zero-initialized image buffer for one MiniVSFS
// volume. Bitmaps, the inode table and the data region are not independent
// objects: they are all views over this one []byte, which is why Image
// carries the buffer and every other type here takes a slice of it.
type Image struct {
	Buf    []byte
	Layout Layout
}

// NewImage allocates a zeroed buffer sized for l and returns the Image over
// it. Every bit, every inode slot and every data block starts zero.
func NewImage(l Layout) Image {
	return Image{
		Buf:    make([]byte, l.TotalBlocks*BlockSize),
		Layout: l,
	}
}

// Block returns the view of block n.
func (img Image) Block(n uint64) []byte {
	return img.Buf[n*BlockSize : (n+1)*BlockSize]
}

// InodeBitmapBlock returns the view of the inode bitmap's sole block.
func (img Image) InodeBitmapBlock() []byte {
	return img.Block(img.Layout.InodeBitmapStart)
}

// DataBitmapBlock returns the view of the data bitmap's sole block.
func (img Image) DataBitmapBlock() []byte {
	return img.Block(img.Layout.DataBitmapStart)
}

// allocator returns an allocator wrapping this image's bitmap blocks.
func (img Image) allocator() allocator {
	return newAllocator(img.InodeBitmapBlock(), img.DataBitmapBlock(), img.Layout.InodeCount, img.Layout.DataRegionBlocks)
}

// InodeSlot returns the 128-byte view of inode number inum (1-based) within
// the inode table.
func (img Image) InodeSlot(inum uint64) ([]byte, error) {
	if inum < 1 || inum > img.Layout.InodeCount {
		return nil, fmt.Errorf("minivsfs: inode number %d out of range [1,%d]", inum, img.Layout.InodeCount)
	}
	tableStart := img.Layout.InodeTableStart * BlockSize
	off := tableStart + (inum-1)*InodeSize
	return img.Buf[off : off+InodeSize], nil
}

// ReadInode decodes inode inum from the inode table.
func (img Image) ReadInode(inum uint64) (Inode, error) {
	slot, err := img.InodeSlot(inum)
	if err != nil {
		return Inode{}, err
	}
	return DecodeSlot(slot)
}

// WriteInode encodes ino into inode inum's slot. Every block address in
// ino.Direct[:ino.DirectBlockCount()] must fall within the data region; this
// is the one place that invariant is enforced for every inode the image ever
// writes, builder or adder alike.
func (img Image) WriteInode(inum uint64, ino Inode) error {
	slot, err := img.InodeSlot(inum)
	if err != nil {
		return err
	}
	n := ino.DirectBlockCount()
	for i := 0; i < n; i++ {
		addr := uint64(ino.Direct[i])
		if addr < img.Layout.DataRegionStart || addr >= img.Layout.TotalBlocks {
			return fmt.Errorf("%w: inode %d direct[%d]=%d outside data region [%d,%d)", ErrBadImage, inum, i, addr, img.Layout.DataRegionStart, img.Layout.TotalBlocks)
		}
	}
	return ino.EncodeSlot(slot)
}

// WriteSuperblock encodes sb into block 0.
func (img Image) WriteSuperblock(sb Superblock) error {
	return sb.EncodeBlock(img.Block(0))
}

// ReadSuperblock decodes and verifies the superblock from block 0.
func (img Image) ReadSuperblock() (Superblock, error) {
	return DecodeSuperblock(img.Block(0))
}

// Persist truncates and writes the entire image buffer to path.
func (img Image) Persist(path string) error {
	return os.WriteFile(path, img.Buf, 0o644)
}

// LoadImage reads an existing image from path, validates its superblock and
// returns the Image over the loaded buffer with Layout populated from the
// decoded superblock.
func LoadImage(path string) (Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	if len(buf) < BlockSize || len(buf)%BlockSize != 0 {
		return Image{}, fmt.Errorf("%w: image size %d is not a positive multiple of %d", ErrBadImage, len(buf), BlockSize)
	}
	sb, err := DecodeSuperblock(buf[0:BlockSize])
	if err != nil {
		return Image{}, err
	}
	l := sb.Layout()
	if uint64(len(buf)) != l.TotalBlocks*BlockSize {
		return Image{}, fmt.Errorf("%w: image size %d does not match superblock's %d total blocks", ErrBadImage, len(buf), l.TotalBlocks)
	}
	return Image{Buf: buf, Layout: l}, nil
}
