package minivsfs_test

import (
	"errors"
	"testing"

	"github.com/KarpelesLab/minivsfs"
)

func TestInodeEncodeDecodeRoundTrip(t *testing.T) {
	ino := minivsfs.Inode{
		Mode:      minivsfs.ModeRegular,
		Links:     1,
		SizeBytes: 13,
		Atime:     1700000000,
		Mtime:     1700000000,
		Ctime:     1700000000,
	}
	ino.Direct[0] = 8

	slot := make([]byte, minivsfs.InodeSize)
	if err := ino.EncodeSlot(slot); err != nil {
		t.Fatalf("EncodeSlot: %v", err)
	}

	got, err := minivsfs.DecodeSlot(slot)
	if err != nil {
		t.Fatalf("DecodeSlot: %v", err)
	}
	if got.Mode != ino.Mode || got.Links != ino.Links || got.SizeBytes != ino.SizeBytes {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, ino)
	}
	if got.Direct[0] != 8 {
		t.Errorf("Direct[0] = %d, want 8", got.Direct[0])
	}
	if got.InodeCRC>>32 != 0 {
		t.Errorf("InodeCRC high 4 bytes = %d, want 0", got.InodeCRC>>32)
	}
}

func TestInodeDecodeSkipsChecksumOnUnallocatedSlot(t *testing.T) {
	slot := make([]byte, minivsfs.InodeSize) // all zero, Links == 0
	got, err := minivsfs.DecodeSlot(slot)
	if err != nil {
		t.Fatalf("DecodeSlot on zeroed slot: %v", err)
	}
	if got.Links != 0 {
		t.Errorf("Links = %d, want 0", got.Links)
	}
}

func TestInodeDecodeRejectsCorruption(t *testing.T) {
	ino := minivsfs.Inode{Mode: minivsfs.ModeRegular, Links: 1, SizeBytes: 4096}
	ino.Direct[0] = 10
	slot := make([]byte, minivsfs.InodeSize)
	if err := ino.EncodeSlot(slot); err != nil {
		t.Fatalf("EncodeSlot: %v", err)
	}
	slot[12] ^= 0xff // corrupt size_bytes

	if _, err := minivsfs.DecodeSlot(slot); !errors.Is(err, minivsfs.ErrBadImage) {
		t.Errorf("DecodeSlot on corrupted slot error = %v, want wrapping ErrBadImage", err)
	}
}

func TestInodeEncodeRejectsOversizedFile(t *testing.T) {
	ino := minivsfs.Inode{Mode: minivsfs.ModeRegular, Links: 1, SizeBytes: 13 * minivsfs.BlockSize}
	slot := make([]byte, minivsfs.InodeSize)
	if err := ino.EncodeSlot(slot); err == nil {
		t.Errorf("EncodeSlot with size_bytes over 12 blocks did not error")
	}
}

func TestDirectBlockCount(t *testing.T) {
	testCases := []struct {
		size uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{minivsfs.BlockSize, 1},
		{minivsfs.BlockSize + 1, 2},
		{12 * minivsfs.BlockSize, 12},
	}
	for _, tc := range testCases {
		ino := minivsfs.Inode{SizeBytes: tc.size}
		if got := ino.DirectBlockCount(); got != tc.want {
			t.Errorf("DirectBlockCount(size=%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}
