package minivsfs

import "fmt"

// AppendDirent adds a (childInum, name) entry of the given type to parent's
// first direct block, at the first free 64-byte slot. Every entry added
// after creation (the adder's newly added file) goes through this single
// path, so the "one block, 64 slots, size_bytes grows in 64-byte steps"
// invariant of §4.6 has one place it can be broken; the builder's "." and
// ".." are written by writeRootDirents instead.
func (img Image) AppendDirent(parentInum uint64, childInum uint64, direntType uint8, name string) error {
	if name == "" || len(name) > direntNameLen {
		return fmt.Errorf("minivsfs: dirent name %q must be 1-%d bytes", name, direntNameLen)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("minivsfs: dirent name %q is reserved", name)
	}

	parent, err := img.ReadInode(parentInum)
	if err != nil {
		return err
	}
	if parent.DirectBlockCount() == 0 {
		return fmt.Errorf("%w: parent inode %d has no directory block", ErrBadImage, parentInum)
	}

	slotIndex := int(parent.SizeBytes / DirentSize)
	if slotIndex >= DirentsPerBlock {
		return ErrDirectoryFull
	}

	block := img.Block(uint64(parent.Direct[0]))
	slot := block[slotIndex*DirentSize : (slotIndex+1)*DirentSize]

	d := Dirent{InodeNo: uint32(childInum), Type: direntType, Name: name}
	if err := d.EncodeSlot(slot); err != nil {
		return err
	}

	parent.SizeBytes += DirentSize
	return img.WriteInode(parentInum, parent)
}

// writeRootDirents writes the root directory's initial "." and ".."
// entries directly into its first data block, bypassing AppendDirent's name
// validation: these two names are reserved everywhere else precisely
// because only this one creation-time step may produce them (§4.6).
func (img Image) writeRootDirents(rootInum uint64, rootBlock uint64) error {
	block := img.Block(rootBlock)

	dot := Dirent{InodeNo: uint32(rootInum), Type: DirentTypeDir, Name: "."}
	if err := dot.EncodeSlot(block[0:DirentSize]); err != nil {
		return err
	}
	dotdot := Dirent{InodeNo: uint32(rootInum), Type: DirentTypeDir, Name: ".."}
	if err := dotdot.EncodeSlot(block[DirentSize : 2*DirentSize]); err != nil {
		return err
	}

	root, err := img.ReadInode(rootInum)
	if err != nil {
		return err
	}
	root.SizeBytes = 2 * DirentSize
	return img.WriteInode(rootInum, root)
}
