package minivsfs

import (
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

const (
	ModeDir     = 0o040000
	ModeRegular = 0o100000
)

// Inode is the decoded form of a 128-byte inode record.
type Inode struct {
	Mode      uint16
	Links     uint16
	Uid       uint32
	Gid       uint32
	SizeBytes uint64
	Atime     int64
	Mtime     int64
	Ctime     int64
	Direct    [MaxDirect]uint32
	ProjID    uint32
	InodeCRC  uint64 // low 4 bytes = CRC, high 4 bytes always 0
}

const (
	inoOffMode       = 0
	inoOffLinks      = 2
	inoOffUid        = 4
	inoOffGid        = 8
	inoOffSize       = 12
	inoOffAtime      = 20
	inoOffMtime      = 28
	inoOffCtime      = 36
	inoOffDirect     = 44 // 12 * 4 = 48 bytes, ends at 92
	inoOffReserved0  = 92
	inoOffReserved1  = 96
	inoOffReserved2  = 100
	inoOffProjID     = 104
	inoOffUid16Gid16 = 108
	inoOffXattrPtr   = 112
	inoOffCRC        = 120
)

// EncodeSlot writes ino into slot, a 128-byte inode-table slot view, and
// stores its CRC-32 (computed over bytes [0,120) with bytes [120,128)
// treated as zero) in the low 4 bytes of InodeCRC; the high 4 bytes are
// always 0.
func (ino Inode) EncodeSlot(slot []byte) error {
	if len(slot) != InodeSize {
		return fmt.Errorf("minivsfs: inode slot must be %d bytes, got %d", InodeSize, len(slot))
	}
	if ino.SizeBytes > MaxFileBlocks*BlockSize {
		return fmt.Errorf("minivsfs: inode size_bytes %d exceeds %d direct blocks", ino.SizeBytes, MaxFileBlocks)
	}

	for i := range slot {
		slot[i] = 0
	}

	w := bytewriter.New(slot[0:inoOffReserved0])
	order := binary.LittleEndian
	binary.Write(w, order, ino.Mode)
	binary.Write(w, order, ino.Links)
	binary.Write(w, order, ino.Uid)
	binary.Write(w, order, ino.Gid)
	binary.Write(w, order, ino.SizeBytes)
	binary.Write(w, order, ino.Atime)
	binary.Write(w, order, ino.Mtime)
	binary.Write(w, order, ino.Ctime)
	binary.Write(w, order, ino.Direct)
	// reserved_0/1/2, uid16_gid16 and xattr_ptr stay zero.
	order.PutUint32(slot[inoOffProjID:], ino.ProjID)

	crc := crc32Checksum(slot[0:inoOffCRC])
	order.PutUint32(slot[inoOffCRC:], crc)
	order.PutUint32(slot[inoOffCRC+4:], 0)

	return nil
}

// DecodeSlot parses an inode from a 128-byte slot view and verifies its
// CRC. Slots with Links == 0 are unallocated and decode without CRC
// verification, since no writer has ever populated them.
func DecodeSlot(slot []byte) (Inode, error) {
	if len(slot) != InodeSize {
		return Inode{}, fmt.Errorf("minivsfs: inode slot must be %d bytes, got %d", InodeSize, len(slot))
	}

	order := binary.LittleEndian
	var ino Inode
	ino.Mode = order.Uint16(slot[inoOffMode:])
	ino.Links = order.Uint16(slot[inoOffLinks:])
	ino.Uid = order.Uint32(slot[inoOffUid:])
	ino.Gid = order.Uint32(slot[inoOffGid:])
	ino.SizeBytes = order.Uint64(slot[inoOffSize:])
	ino.Atime = int64(order.Uint64(slot[inoOffAtime:]))
	ino.Mtime = int64(order.Uint64(slot[inoOffMtime:]))
	ino.Ctime = int64(order.Uint64(slot[inoOffCtime:]))
	for i := range ino.Direct {
		ino.Direct[i] = order.Uint32(slot[inoOffDirect+i*4:])
	}
	ino.ProjID = order.Uint32(slot[inoOffProjID:])
	crcLow := order.Uint32(slot[inoOffCRC:])
	crcHigh := order.Uint32(slot[inoOffCRC+4:])
	ino.InodeCRC = uint64(crcHigh)<<32 | uint64(crcLow)

	if ino.Links == 0 {
		return ino, nil
	}

	want := crc32Checksum(slot[0:inoOffCRC])
	if want != crcLow || crcHigh != 0 {
		return Inode{}, fmt.Errorf("%w: inode checksum mismatch (got 0x%x, want 0x%x)", ErrBadImage, crcLow, want)
	}

	return ino, nil
}

// DirectBlockCount returns the number of direct block slots this inode's
// SizeBytes occupies, ceil(SizeBytes / BlockSize).
func (ino Inode) DirectBlockCount() int {
	if ino.SizeBytes == 0 {
		return 0
	}
	return int(ceilDiv(ino.SizeBytes, BlockSize))
}
