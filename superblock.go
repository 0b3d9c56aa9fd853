package minivsfs

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/noxer/bytewriter"
)

// Superblock is the decoded form of the 116-byte superblock record: 112
// bytes of fields at the start of block 0, plus the 4-byte checksum stored
// at the block's very end (offset 4092). The bytes in between are zero.
type Superblock struct {
	Magic             uint32
	Version           uint32
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
	MtimeEpoch        uint64
	Flags             uint32
	Checksum          uint32
}

// superblock field byte offsets within the 112-byte fixed-field prefix of
// block 0. The checksum itself does NOT live contiguously after Flags; it is
// stored separately at the last 4 bytes of the 4096-byte block (offset
// 4092), per §3.1 / §8 property 2.
const (
	offMagic             = 0
	offVersion           = 4
	offBlockSize         = 8
	offTotalBlocks       = 12
	offInodeCount        = 20
	offInodeBitmapStart  = 28
	offInodeBitmapBlocks = 36
	offDataBitmapStart   = 44
	offDataBitmapBlocks  = 52
	offInodeTableStart   = 60
	offInodeTableBlocks  = 68
	offDataRegionStart   = 76
	offDataRegionBlocks  = 84
	offRootInode         = 92
	offMtimeEpoch        = 100
	offFlags             = 108
	fieldsEnd            = 112 // bytes [0,112) are the real fields above

	sbChecksumOffset = BlockSize - 4 // 4092
	sbChecksumLen    = 4
)

// NewSuperblock builds the superblock for a freshly planned layout at the
// given mtime, with Checksum left at 0 (EncodeBlock computes and stores the
// CRC when it writes the block).
func NewSuperblock(l Layout, mtimeEpoch uint64) Superblock {
	return Superblock{
		Magic:              SuperblockMagic,
		Version:            FormatVersion,
		BlockSize:          l.BlockSize,
		TotalBlocks:        l.TotalBlocks,
		InodeCount:         l.InodeCount,
		InodeBitmapStart:   l.InodeBitmapStart,
		InodeBitmapBlocks:  l.InodeBitmapBlocks,
		DataBitmapStart:    l.DataBitmapStart,
		DataBitmapBlocks:   l.DataBitmapBlocks,
		InodeTableStart:    l.InodeTableStart,
		InodeTableBlocks:   l.InodeTableBlocks,
		DataRegionStart:    l.DataRegionStart,
		DataRegionBlocks:   l.DataRegionBlocks,
		RootInode:          l.RootInode,
		MtimeEpoch:         mtimeEpoch,
		Flags:              0,
	}
}

// EncodeBlock writes sb into block, a 4096-byte view of block 0, then
// computes and stores the superblock CRC over block[0:4092] at
// block[4092:4096]. block must be exactly BlockSize bytes and is assumed
// zeroed outside the field prefix.
func (sb Superblock) EncodeBlock(block []byte) error {
	if len(block) != BlockSize {
		return fmt.Errorf("minivsfs: superblock block must be %d bytes, got %d", BlockSize, len(block))
	}

	// clear everything first so the field prefix's writer starts from a
	// known-zero buffer and the padding/checksum slot need no separate pass.
	for i := range block {
		block[i] = 0
	}

	w := bytewriter.New(block[0:fieldsEnd])
	order := binary.LittleEndian
	binary.Write(w, order, sb.Magic)
	binary.Write(w, order, sb.Version)
	binary.Write(w, order, sb.BlockSize)
	binary.Write(w, order, sb.TotalBlocks)
	binary.Write(w, order, sb.InodeCount)
	binary.Write(w, order, sb.InodeBitmapStart)
	binary.Write(w, order, sb.InodeBitmapBlocks)
	binary.Write(w, order, sb.DataBitmapStart)
	binary.Write(w, order, sb.DataBitmapBlocks)
	binary.Write(w, order, sb.InodeTableStart)
	binary.Write(w, order, sb.InodeTableBlocks)
	binary.Write(w, order, sb.DataRegionStart)
	binary.Write(w, order, sb.DataRegionBlocks)
	binary.Write(w, order, sb.RootInode)
	binary.Write(w, order, sb.MtimeEpoch)
	binary.Write(w, order, sb.Flags)

	crc := crc32Checksum(block[0:sbChecksumOffset])
	order.PutUint32(block[sbChecksumOffset:], crc)

	return nil
}

// DecodeSuperblock parses a superblock from a 4096-byte block-0 view and
// verifies its stored CRC, returning ErrBadImage on mismatch.
func DecodeSuperblock(block []byte) (Superblock, error) {
	if len(block) != BlockSize {
		return Superblock{}, fmt.Errorf("%w: block must be %d bytes, got %d", ErrBadImage, BlockSize, len(block))
	}

	order := binary.LittleEndian
	sb := Superblock{
		Magic:             order.Uint32(block[offMagic:]),
		Version:           order.Uint32(block[offVersion:]),
		BlockSize:         order.Uint32(block[offBlockSize:]),
		TotalBlocks:       order.Uint64(block[offTotalBlocks:]),
		InodeCount:        order.Uint64(block[offInodeCount:]),
		InodeBitmapStart:  order.Uint64(block[offInodeBitmapStart:]),
		InodeBitmapBlocks: order.Uint64(block[offInodeBitmapBlocks:]),
		DataBitmapStart:   order.Uint64(block[offDataBitmapStart:]),
		DataBitmapBlocks:  order.Uint64(block[offDataBitmapBlocks:]),
		InodeTableStart:   order.Uint64(block[offInodeTableStart:]),
		InodeTableBlocks:  order.Uint64(block[offInodeTableBlocks:]),
		DataRegionStart:   order.Uint64(block[offDataRegionStart:]),
		DataRegionBlocks:  order.Uint64(block[offDataRegionBlocks:]),
		RootInode:         order.Uint64(block[offRootInode:]),
		MtimeEpoch:        order.Uint64(block[offMtimeEpoch:]),
		Flags:             order.Uint32(block[offFlags:]),
		Checksum:          order.Uint32(block[sbChecksumOffset:]),
	}

	var merr *multierror.Error
	if sb.Magic != SuperblockMagic {
		merr = multierror.Append(merr, fmt.Errorf("bad magic 0x%x", sb.Magic))
	}
	if sb.Version != FormatVersion {
		merr = multierror.Append(merr, fmt.Errorf("unsupported version %d", sb.Version))
	}
	if sb.BlockSize != BlockSize {
		merr = multierror.Append(merr, fmt.Errorf("unexpected block size %d", sb.BlockSize))
	}
	if want := crc32Checksum(block[0:sbChecksumOffset]); want != sb.Checksum {
		merr = multierror.Append(merr, fmt.Errorf("checksum mismatch (got 0x%x, want 0x%x)", sb.Checksum, want))
	}
	if merr != nil {
		merr.ErrorFormat = singleLineErrorFormat
		return Superblock{}, fmt.Errorf("%w: %s", ErrBadImage, merr.Error())
	}

	return sb, nil
}

// Layout extracts the Layout embedded in a decoded superblock.
func (sb Superblock) Layout() Layout {
	return Layout{
		BlockSize:         sb.BlockSize,
		TotalBlocks:       sb.TotalBlocks,
		InodeCount:        sb.InodeCount,
		InodeBitmapStart:  sb.InodeBitmapStart,
		InodeBitmapBlocks: sb.InodeBitmapBlocks,
		DataBitmapStart:   sb.DataBitmapStart,
		DataBitmapBlocks:  sb.DataBitmapBlocks,
		InodeTableStart:   sb.InodeTableStart,
		InodeTableBlocks:  sb.InodeTableBlocks,
		DataRegionStart:   sb.DataRegionStart,
		DataRegionBlocks:  sb.DataRegionBlocks,
		RootInode:         sb.RootInode,
	}
}
