// Package filesystem implements the SimpleFS file system core: superblock
// format and verification, inode table management, free-block and
// free-inode bitmaps rebuilt from disk, allocation/deallocation, and the
// byte-offset read/write path.
package filesystem

import (
	"log"

	bitmap "github.com/boljen/go-bitmap"

	disko "github.com/Belalaskaik/Simple-File-System"
	"github.com/Belalaskaik/Simple-File-System/disk"
)

// FileSystem is a mounted view of a Disk: the cached superblock plus the
// in-memory free-inode and free-block bitmaps rebuilt from the disk's
// current contents. It is inert until Mount succeeds, and exclusively owns
// its bitmaps and its disk for the lifetime of the mount.
type FileSystem struct {
	disk       *disk.Disk
	meta       rawSuperBlock
	freeInodes bitmap.Bitmap
	freeBlocks bitmap.Bitmap
}

// Format writes a fresh superblock to d and zeros every other block. It
// requires d to be unmounted.
func Format(d *disk.Disk) error {
	if d.Mounted() {
		return disko.ErrBusy.WithMessage("cannot format a mounted disk")
	}

	blocks := d.Blocks
	inodeBlocks := ceilDiv(blocks, 10)
	if 1+inodeBlocks > blocks {
		return disko.ErrInvalidArgument.WithMessage("disk too small to hold a superblock and inode table")
	}

	sb := rawSuperBlock{
		Magic:       disko.MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * InodesPerBlock,
	}

	buf := make([]byte, disko.BlockSize)
	encodeSuperBlock(buf, sb)
	if err := d.Write(0, buf); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}

	zero := make([]byte, disko.BlockSize)
	for b := uint32(1); b < blocks; b++ {
		if err := d.Write(b, zero); err != nil {
			return disko.ErrIOFailed.Wrap(err)
		}
	}

	return nil
}

// validateSuperBlock checks that the superblock's magic number matches,
// that its inode block count agrees with its block count, and that the
// inode table plus superblock fit on the disk.
func validateSuperBlock(sb rawSuperBlock, diskBlocks uint32) error {
	if sb.Magic != disko.MagicNumber {
		return disko.ErrFileSystemCorrupted.WithMessage("invalid magic number")
	}
	if sb.Blocks != diskBlocks {
		return disko.ErrFileSystemCorrupted.WithMessage("superblock block count does not match disk")
	}
	if sb.InodeBlocks != ceilDiv(sb.Blocks, 10) {
		return disko.ErrFileSystemCorrupted.WithMessage("inode block count is inconsistent with block count")
	}
	if 1+sb.InodeBlocks > sb.Blocks {
		return disko.ErrFileSystemCorrupted.WithMessage("inode table does not fit on disk")
	}
	if sb.Inodes != sb.InodeBlocks*InodesPerBlock {
		return disko.ErrFileSystemCorrupted.WithMessage("inode count is inconsistent with inode block count")
	}
	return nil
}

// Mount binds fs to d, verifies the superblock, and rebuilds the in-memory
// free-inode and free-block bitmaps from disk contents.
func Mount(d *disk.Disk) (*FileSystem, error) {
	if d.Mounted() {
		return nil, disko.ErrBusy.WithMessage("disk is already mounted")
	}

	block0 := make([]byte, disko.BlockSize)
	if err := d.Read(0, block0); err != nil {
		return nil, disko.ErrIOFailed.Wrap(err)
	}

	sb := decodeSuperBlock(block0)
	if err := validateSuperBlock(sb, d.Blocks); err != nil {
		return nil, err
	}

	fs := &FileSystem{disk: d, meta: sb}

	if err := fs.rebuildFreeInodes(); err != nil {
		return nil, err
	}
	if err := fs.rebuildFreeBlocks(); err != nil {
		fs.freeInodes = nil
		return nil, err
	}

	d.SetMounted(true)
	return fs, nil
}

// Unmount releases fs's bitmaps and clears the disk's mount flag. Unmounting
// an already-unmounted FileSystem is a no-op.
func (fs *FileSystem) Unmount() {
	if fs.disk == nil {
		return
	}
	fs.disk.SetMounted(false)
	fs.disk = nil
	fs.freeInodes = nil
	fs.freeBlocks = nil
}

// rebuildFreeInodes scans every inode-table block and marks inode i free iff
// its on-disk `valid` flag is unset.
func (fs *FileSystem) rebuildFreeInodes() error {
	fs.freeInodes = bitmap.New(int(fs.meta.Inodes))

	buf := make([]byte, disko.BlockSize)
	for b := uint32(1); b <= fs.meta.InodeBlocks; b++ {
		if err := fs.disk.Read(b, buf); err != nil {
			return disko.ErrIOFailed.Wrap(err)
		}
		for slot := uint32(0); slot < InodesPerBlock; slot++ {
			inodeNumber := (b-1)*InodesPerBlock + slot
			raw := decodeInodeAt(buf, slot)
			fs.freeInodes.Set(int(inodeNumber), raw.Valid == 0)
		}
	}
	return nil
}

// rebuildFreeBlocks marks the superblock and inode table used, every data
// block free by default, then walks every valid inode's direct and indirect
// pointers and marks the blocks they reach as used. The walk-from-inodes
// order is required: a legitimately allocated block full of zero bytes
// must not be mistaken for a free one.
func (fs *FileSystem) rebuildFreeBlocks() error {
	fs.freeBlocks = bitmap.New(int(fs.meta.Blocks))

	for b := fs.meta.InodeBlocks + 1; b < fs.meta.Blocks; b++ {
		fs.freeBlocks.Set(int(b), true)
	}

	inodeBuf := make([]byte, disko.BlockSize)
	indirectBuf := make([]byte, disko.BlockSize)

	for ib := uint32(1); ib <= fs.meta.InodeBlocks; ib++ {
		if err := fs.disk.Read(ib, inodeBuf); err != nil {
			return disko.ErrIOFailed.Wrap(err)
		}
		for slot := uint32(0); slot < InodesPerBlock; slot++ {
			raw := decodeInodeAt(inodeBuf, slot)
			if raw.Valid == 0 {
				continue
			}

			for _, p := range raw.Direct {
				if p != 0 {
					fs.freeBlocks.Set(int(p), false)
				}
			}

			if raw.Indirect != 0 {
				fs.freeBlocks.Set(int(raw.Indirect), false)
				if err := fs.disk.Read(raw.Indirect, indirectBuf); err != nil {
					return disko.ErrIOFailed.Wrap(err)
				}
				ptrs := decodeIndirectBlock(indirectBuf)
				for _, p := range ptrs {
					if p != 0 {
						fs.freeBlocks.Set(int(p), false)
					}
				}
			}
		}
	}
	return nil
}

func (fs *FileSystem) readInodeBlock(block uint32, buf []byte) error {
	if err := fs.disk.Read(block, buf); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	return nil
}

func (fs *FileSystem) writeInodeBlock(block uint32, buf []byte) error {
	if err := fs.disk.Write(block, buf); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	return nil
}

// logf writes an observational diagnostic line. These are never parsed by
// callers.
func logf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
