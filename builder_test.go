package minivsfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KarpelesLab/minivsfs"
)

func TestBuildScenarioOne(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "a.img")

	if err := minivsfs.Build(imagePath, 180, 128); err != nil {
		t.Fatalf("Build: %v", err)
	}

	buf, err := os.ReadFile(imagePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(buf) != 180*1024 {
		t.Fatalf("image length = %d, want %d", len(buf), 180*1024)
	}

	sb, err := minivsfs.DecodeSuperblock(buf[0:minivsfs.BlockSize])
	if err != nil {
		t.Fatalf("DecodeSuperblock: %v", err)
	}
	l := sb.Layout()
	if l.TotalBlocks != 45 || l.InodeTableBlocks != 4 || l.DataRegionStart != 7 || l.DataRegionBlocks != 38 {
		t.Errorf("unexpected layout: %+v", l)
	}

	if buf[minivsfs.InodeBitmapStart*minivsfs.BlockSize] != 0x01 {
		t.Errorf("inode bitmap byte 0 = 0x%x, want 0x01", buf[minivsfs.InodeBitmapStart*minivsfs.BlockSize])
	}
	if buf[minivsfs.DataBitmapStart*minivsfs.BlockSize] != 0x01 {
		t.Errorf("data bitmap byte 0 = 0x%x, want 0x01", buf[minivsfs.DataBitmapStart*minivsfs.BlockSize])
	}

	rootSlotOff := minivsfs.InodeTableStart * minivsfs.BlockSize
	root, err := minivsfs.DecodeSlot(buf[rootSlotOff : rootSlotOff+minivsfs.InodeSize])
	if err != nil {
		t.Fatalf("DecodeSlot(root): %v", err)
	}
	if root.Mode != minivsfs.ModeDir || root.Links != 2 || root.SizeBytes != 128 || root.Direct[0] != 7 {
		t.Errorf("unexpected root inode: %+v", root)
	}

	rootBlockOff := uint64(7) * minivsfs.BlockSize
	dot, err := minivsfs.DecodeDirentSlot(buf[rootBlockOff : rootBlockOff+minivsfs.DirentSize])
	if err != nil {
		t.Fatalf("DecodeDirentSlot(.): %v", err)
	}
	if dot.Name != "." || dot.InodeNo != 1 {
		t.Errorf("unexpected '.' dirent: %+v", dot)
	}
	dotdot, err := minivsfs.DecodeDirentSlot(buf[rootBlockOff+minivsfs.DirentSize : rootBlockOff+2*minivsfs.DirentSize])
	if err != nil {
		t.Fatalf("DecodeDirentSlot(..): %v", err)
	}
	if dotdot.Name != ".." || dotdot.InodeNo != 1 {
		t.Errorf("unexpected '..' dirent: %+v", dotdot)
	}
}

func TestBuildRoundTripLayoutMatchesPlan(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "a.img")

	planned, err := minivsfs.PlanLayout(256, 256)
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	if err := minivsfs.Build(imagePath, 256, 256); err != nil {
		t.Fatalf("Build: %v", err)
	}

	img, err := minivsfs.LoadImage(imagePath)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Layout != planned {
		t.Errorf("loaded layout = %+v, want %+v", img.Layout, planned)
	}
}

func TestBuildRejectsBadConfiguration(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "a.img")

	if err := minivsfs.Build(imagePath, 179, 128); err == nil {
		t.Errorf("Build(179, 128) did not error")
	}
	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Errorf("Build on configuration error left a file behind")
	}
}
