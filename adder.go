package minivsfs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AddFile runs the full mkfs-adder pipeline (§4.8): load and validate the
// input image, allocate an inode and data blocks for hostFilePath, copy its
// payload in, append a root dirent for it, update and re-checksum the root
// inode and superblock, then persist to outputPath. inputPath and
// outputPath must be distinct; the input is never modified in place.
func AddFile(inputPath, outputPath, hostFilePath string) error {
	img, err := LoadImage(inputPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(hostFilePath)
	if err != nil {
		return err
	}
	size := uint64(info.Size())
	blocksNeeded := int(ceilDiv(size, BlockSize))
	if blocksNeeded > MaxFileBlocks {
		return fmt.Errorf("%w: %s needs %d blocks, max %d", ErrFileTooLarge, hostFilePath, blocksNeeded, MaxFileBlocks)
	}

	payload, err := os.ReadFile(hostFilePath)
	if err != nil {
		return err
	}

	alloc := img.allocator()
	childInum, err := alloc.AllocateInode()
	if err != nil {
		return err
	}
	addrs, err := alloc.AllocateDataBlocks(img.Layout.DataRegionStart, blocksNeeded)
	if err != nil {
		return err
	}

	for i, addr := range addrs {
		block := img.Block(addr)
		start := i * BlockSize
		end := start + BlockSize
		if end > len(payload) {
			end = len(payload)
		}
		copy(block, payload[start:end])
	}

	now := time.Now().Unix()
	child := Inode{
		Mode:      ModeRegular,
		Links:     1,
		SizeBytes: size,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
	}
	for i, addr := range addrs {
		child.Direct[i] = uint32(addr)
	}
	if err := img.WriteInode(childInum, child); err != nil {
		return err
	}

	name := filepath.Base(hostFilePath)
	if len(name) > direntNameLen {
		name = name[:direntNameLen]
	}
	if err := img.AppendDirent(RootInode, childInum, DirentTypeFile, name); err != nil {
		return err
	}

	root, err := img.ReadInode(RootInode)
	if err != nil {
		return err
	}
	root.Links++
	root.Mtime = now
	root.Ctime = now
	if err := img.WriteInode(RootInode, root); err != nil {
		return err
	}

	sb, err := img.ReadSuperblock()
	if err != nil {
		return err
	}
	if err := img.WriteSuperblock(sb); err != nil {
		return err
	}

	Logger.Printf("minivsfs: added %s as inode %d (%d bytes, %d blocks) to %s", hostFilePath, childInum, size, blocksNeeded, outputPath)

	return img.Persist(outputPath)
}
