package minivsfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

const (
	DirentTypeFile = dirTypeFile
	DirentTypeDir  = dirTypeDir

	direntNameLen = 58
	direntOffIno  = 0
	direntOffType = 4
	direntOffName = 5
	direntOffXOR  = 63
)

// Dirent is the decoded form of a 64-byte directory entry.
type Dirent struct {
	InodeNo uint32
	Type    uint8
	Name    string
}

// EncodeSlot writes d into slot, a 64-byte dirent view, padding Name with
// NUL bytes and storing the XOR fold of bytes [0,63) at byte 63.
func (d Dirent) EncodeSlot(slot []byte) error {
	if len(slot) != DirentSize {
		return fmt.Errorf("minivsfs: dirent slot must be %d bytes, got %d", DirentSize, len(slot))
	}
	nameBytes := []byte(d.Name)
	if len(nameBytes) > direntNameLen {
		return fmt.Errorf("minivsfs: dirent name %q exceeds %d bytes", d.Name, direntNameLen)
	}
	if bytes.IndexByte(nameBytes, 0) >= 0 {
		return fmt.Errorf("minivsfs: dirent name %q contains NUL", d.Name)
	}

	for i := range slot {
		slot[i] = 0
	}

	var nameField [direntNameLen]byte
	copy(nameField[:], nameBytes)

	w := bytewriter.New(slot[0:direntOffXOR])
	order := binary.LittleEndian
	binary.Write(w, order, d.InodeNo)
	binary.Write(w, order, d.Type)
	binary.Write(w, order, nameField)
	slot[direntOffXOR] = xorFold(slot[0:direntOffXOR])

	return nil
}

// DecodeDirentSlot parses a dirent from a 64-byte view and verifies its XOR
// checksum. Empty slots (InodeNo == 0) are returned without checksum
// verification, since no writer has ever populated them.
func DecodeDirentSlot(slot []byte) (Dirent, error) {
	if len(slot) != DirentSize {
		return Dirent{}, fmt.Errorf("minivsfs: dirent slot must be %d bytes, got %d", DirentSize, len(slot))
	}

	order := binary.LittleEndian
	d := Dirent{
		InodeNo: order.Uint32(slot[direntOffIno:]),
		Type:    slot[direntOffType],
	}

	nameBytes := slot[direntOffName : direntOffName+direntNameLen]
	if nul := bytes.IndexByte(nameBytes, 0); nul >= 0 {
		d.Name = string(nameBytes[:nul])
	} else {
		d.Name = string(nameBytes)
	}

	if d.InodeNo == 0 {
		return d, nil
	}

	want := xorFold(slot[0:direntOffXOR])
	if want != slot[direntOffXOR] {
		return Dirent{}, fmt.Errorf("%w: dirent checksum mismatch for %q (got 0x%x, want 0x%x)", ErrBadImage, d.Name, slot[direntOffXOR], want)
	}

	return d, nil
}
