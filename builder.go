package minivsfs

import "time"

// Build runs the full mkfs-builder pipeline (§4.7): plan the layout, allocate
// a zeroed image buffer, write the superblock, allocate and populate the
// root inode and its "." / ".." dirents, then persist to imagePath.
func Build(imagePath string, sizeKiB, inodeCount uint64) error {
	l, err := PlanLayout(sizeKiB, inodeCount)
	if err != nil {
		return err
	}

	img := NewImage(l)
	now := time.Now().Unix()

	sb := NewSuperblock(l, uint64(now))
	if err := img.WriteSuperblock(sb); err != nil {
		return err
	}

	alloc := img.allocator()
	rootInum, err := alloc.AllocateInode()
	if err != nil {
		return err
	}
	dataAddrs, err := alloc.AllocateDataBlocks(l.DataRegionStart, 1)
	if err != nil {
		return err
	}

	root := Inode{
		Mode:  ModeDir,
		Links: 2,
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
	root.Direct[0] = uint32(dataAddrs[0])
	if err := img.WriteInode(rootInum, root); err != nil {
		return err
	}

	if err := img.writeRootDirents(rootInum, dataAddrs[0]); err != nil {
		return err
	}

	Logger.Printf("minivsfs: built image %s size=%d bytes root_inode=%d root_block=%d", imagePath, len(img.Buf), rootInum, dataAddrs[0])

	return img.Persist(imagePath)
}
