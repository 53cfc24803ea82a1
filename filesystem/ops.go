package filesystem

import (
	disko "github.com/Belalaskaik/Simple-File-System"
)

// TotalBlocks returns the total number of blocks on the mounted disk.
func (fs *FileSystem) TotalBlocks() uint32 { return fs.meta.Blocks }

// TotalInodes returns the total number of inodes the mounted disk can hold.
func (fs *FileSystem) TotalInodes() uint32 { return fs.meta.Inodes }

// InodeBlocks returns the number of blocks occupied by the inode table.
func (fs *FileSystem) InodeBlocks() uint32 { return fs.meta.InodeBlocks }

// FreeBlockCount counts the data blocks currently marked free. It's an
// O(blocks) scan, useful for tests and the debug shell, not for hot paths.
func (fs *FileSystem) FreeBlockCount() int {
	count := 0
	for i := 0; i < int(fs.meta.Blocks); i++ {
		if fs.freeBlocks.Get(i) {
			count++
		}
	}
	return count
}

// FreeInodeCount counts the inodes currently marked free.
func (fs *FileSystem) FreeInodeCount() int {
	count := 0
	for i := 0; i < int(fs.meta.Inodes); i++ {
		if fs.freeInodes.Get(i) {
			count++
		}
	}
	return count
}

func (fs *FileSystem) loadInode(inodeNumber uint32) (rawInode, error) {
	if inodeNumber >= fs.meta.Inodes {
		return rawInode{}, disko.ErrArgumentOutOfRange.WithMessage("inode number out of range")
	}
	block, slot := inodeBlockAndSlot(inodeNumber)
	buf := make([]byte, disko.BlockSize)
	if err := fs.readInodeBlock(block, buf); err != nil {
		return rawInode{}, err
	}
	return decodeInodeAt(buf, slot), nil
}

// Create allocates the first free inode, marking it valid and empty. It
// returns the new inode number, or -1 if every inode is in use. A freshly
// created inode always has size 0 regardless of its number.
func (fs *FileSystem) Create() int64 {
	for i := uint32(0); i < fs.meta.Inodes; i++ {
		if !fs.freeInodes.Get(int(i)) {
			continue
		}

		block, slot := inodeBlockAndSlot(i)
		buf := make([]byte, disko.BlockSize)
		if err := fs.readInodeBlock(block, buf); err != nil {
			logf("create: failed to read inode block %d: %v", block, err)
			return -1
		}

		encodeInodeAt(buf, slot, rawInode{Valid: 1})

		if err := fs.writeInodeBlock(block, buf); err != nil {
			logf("create: failed to write inode block %d: %v", block, err)
			return -1
		}

		fs.freeInodes.Set(int(i), false)
		return int64(i)
	}
	logf("create: %v", disko.ErrNoFreeInodes.WithMessage("no free inodes left on device"))
	return -1
}

// Remove frees inode inodeNumber and every data and indirect block it owns.
// It returns false if the inode number is out of range or already free.
func (fs *FileSystem) Remove(inodeNumber uint32) bool {
	if inodeNumber >= fs.meta.Inodes {
		logf("remove: %v", disko.ErrArgumentOutOfRange.WithMessage("inode number out of range"))
		return false
	}

	block, slot := inodeBlockAndSlot(inodeNumber)
	buf := make([]byte, disko.BlockSize)
	if err := fs.readInodeBlock(block, buf); err != nil {
		logf("remove: failed to read inode block %d: %v", block, err)
		return false
	}

	raw := decodeInodeAt(buf, slot)
	if raw.Valid == 0 {
		logf("remove: %v", disko.ErrNotFound.WithMessage("inode is not allocated"))
		return false
	}

	for i, p := range raw.Direct {
		if p != 0 {
			fs.freeBlocks.Set(int(p), true)
			raw.Direct[i] = 0
		}
	}

	if raw.Indirect != 0 {
		indirectBuf := make([]byte, disko.BlockSize)
		if err := fs.disk.Read(raw.Indirect, indirectBuf); err != nil {
			logf("remove: failed to read indirect block %d: %v", raw.Indirect, err)
		} else {
			for _, q := range decodeIndirectBlock(indirectBuf) {
				if q != 0 {
					fs.freeBlocks.Set(int(q), true)
				}
			}
		}
		fs.freeBlocks.Set(int(raw.Indirect), true)
		raw.Indirect = 0
	}

	raw.Size = 0
	raw.Valid = 0
	encodeInodeAt(buf, slot, raw)
	if err := fs.writeInodeBlock(block, buf); err != nil {
		logf("remove: failed to write inode block %d: %v", block, err)
		return false
	}

	fs.freeInodes.Set(int(inodeNumber), true)
	return true
}

// Stat returns the size, in bytes, of inode inodeNumber, or -1 if it does
// not exist or is not valid.
func (fs *FileSystem) Stat(inodeNumber uint32) int64 {
	raw, err := fs.loadInode(inodeNumber)
	if err != nil {
		logf("stat: %v", err)
		return -1
	}
	if raw.Valid == 0 {
		logf("stat: %v", disko.ErrNotFound.WithMessage("inode is not allocated"))
		return -1
	}
	return int64(raw.Size)
}

// allocateBlock returns the lowest-index free data block, marks it used,
// and returns its number. It returns ErrNoSpaceOnDevice if none are
// available.
func (fs *FileSystem) allocateBlock() (uint32, error) {
	for b := fs.meta.InodeBlocks + 1; b < fs.meta.Blocks; b++ {
		if fs.freeBlocks.Get(int(b)) {
			fs.freeBlocks.Set(int(b), false)
			return b, nil
		}
	}
	return 0, disko.ErrNoSpaceOnDevice
}

// resolveBlockPointer maps a logical block index to its physical block
// number without allocating, lazily loading and caching the indirect block
// the first time it's needed. A return of (0, nil) means "no such block
// yet" — not a failure.
func (fs *FileSystem) resolveBlockPointer(
	raw rawInode, logicalBlock uint32, indirectPtrs *[PointersPerBlock]uint32, indirectLoaded *bool,
) (uint32, error) {
	if logicalBlock < PointersPerInode {
		return raw.Direct[logicalBlock], nil
	}

	idx := logicalBlock - PointersPerInode
	if idx >= PointersPerBlock || raw.Indirect == 0 {
		return 0, nil
	}

	if !*indirectLoaded {
		buf := make([]byte, disko.BlockSize)
		if err := fs.disk.Read(raw.Indirect, buf); err != nil {
			return 0, err
		}
		*indirectPtrs = decodeIndirectBlock(buf)
		*indirectLoaded = true
	}

	return indirectPtrs[idx], nil
}

// ensureBlockAllocated is resolveBlockPointer's write-side counterpart: it
// allocates a direct or indirect-block-backed slot on demand. indirectBuf
// holds the raw bytes of the inode's indirect block once loaded, so the
// caller can persist it exactly once after the write loop finishes.
func (fs *FileSystem) ensureBlockAllocated(
	raw *rawInode, logicalBlock uint32, indirectBuf *[]byte, indirectDirty *bool,
) (uint32, error) {
	if logicalBlock < PointersPerInode {
		if raw.Direct[logicalBlock] == 0 {
			b, err := fs.allocateBlock()
			if err != nil {
				return 0, err
			}
			raw.Direct[logicalBlock] = b
		}
		return raw.Direct[logicalBlock], nil
	}

	idx := logicalBlock - PointersPerInode
	if idx >= PointersPerBlock {
		return 0, disko.ErrArgumentOutOfRange.WithMessage("write would exceed maximum file size")
	}

	if raw.Indirect == 0 {
		b, err := fs.allocateBlock()
		if err != nil {
			return 0, err
		}
		zero := make([]byte, disko.BlockSize)
		if err := fs.disk.Write(b, zero); err != nil {
			return 0, err
		}
		raw.Indirect = b
	}

	if *indirectBuf == nil {
		buf := make([]byte, disko.BlockSize)
		if err := fs.disk.Read(raw.Indirect, buf); err != nil {
			return 0, err
		}
		*indirectBuf = buf
	}

	ptrs := decodeIndirectBlock(*indirectBuf)
	if ptrs[idx] == 0 {
		b, err := fs.allocateBlock()
		if err != nil {
			return 0, err
		}
		ptrs[idx] = b
		encodeIndirectBlock(*indirectBuf, ptrs)
		*indirectDirty = true
	}

	return ptrs[idx], nil
}

// Read copies up to length bytes of inode inodeNumber's data, starting at
// offset, into data. It returns the number of bytes copied, or -1 on
// failure.
func (fs *FileSystem) Read(inodeNumber uint32, data []byte, length, offset uint32) int64 {
	raw, err := fs.loadInode(inodeNumber)
	if err != nil {
		logf("read: %v", err)
		return -1
	}
	if raw.Valid == 0 {
		logf("read: %v", disko.ErrNotFound.WithMessage("inode is not allocated"))
		return -1
	}
	if offset > raw.Size {
		logf("read: %v", disko.ErrArgumentOutOfRange.WithMessage("offset past end of inode"))
		return -1
	}
	if offset == raw.Size {
		return 0
	}

	remaining := length
	if avail := raw.Size - offset; remaining > avail {
		remaining = avail
	}

	var bytesRead uint32
	logicalBlock := offset / disko.BlockSize
	intraOffset := offset % disko.BlockSize
	blockBuf := make([]byte, disko.BlockSize)
	var indirectPtrs [PointersPerBlock]uint32
	indirectLoaded := false
	diskFailed := false

	for remaining > 0 {
		physical, err := fs.resolveBlockPointer(raw, logicalBlock, &indirectPtrs, &indirectLoaded)
		if err != nil {
			logf("read: failed to read indirect block %d: %v", raw.Indirect, err)
			diskFailed = true
			break
		}
		if physical == 0 {
			break
		}

		if err := fs.disk.Read(physical, blockBuf); err != nil {
			logf("read: failed to read block %d: %v", physical, err)
			diskFailed = true
			break
		}

		n := disko.BlockSize - intraOffset
		if n > remaining {
			n = remaining
		}
		copy(data[bytesRead:bytesRead+n], blockBuf[intraOffset:intraOffset+n])

		bytesRead += n
		remaining -= n
		logicalBlock++
		intraOffset = 0
	}

	if diskFailed && bytesRead == 0 {
		return -1
	}
	return int64(bytesRead)
}

// Write copies up to length bytes from data into inode inodeNumber starting
// at offset, allocating direct and indirect blocks as needed and growing
// the inode's reported size to max(old size, offset+written) — never
// old+written, so overwriting existing bytes never grows the file. It
// returns the number of bytes written, or -1 if nothing could be written.
func (fs *FileSystem) Write(inodeNumber uint32, data []byte, length, offset uint32) int64 {
	if inodeNumber >= fs.meta.Inodes {
		logf("write: %v", disko.ErrArgumentOutOfRange.WithMessage("inode number out of range"))
		return -1
	}

	block, slot := inodeBlockAndSlot(inodeNumber)
	inodeBuf := make([]byte, disko.BlockSize)
	if err := fs.readInodeBlock(block, inodeBuf); err != nil {
		logf("write: failed to read inode block %d: %v", block, err)
		return -1
	}

	raw := decodeInodeAt(inodeBuf, slot)
	if raw.Valid == 0 {
		logf("write: %v", disko.ErrNotFound.WithMessage("inode is not allocated"))
		return -1
	}
	if length == 0 {
		return 0
	}

	var bytesWritten uint32
	remaining := length
	logicalBlock := offset / disko.BlockSize
	intraOffset := offset % disko.BlockSize
	var indirectBuf []byte
	indirectDirty := false

	for remaining > 0 {
		physical, err := fs.ensureBlockAllocated(&raw, logicalBlock, &indirectBuf, &indirectDirty)
		if err != nil {
			logf("write: allocation failed for inode %d: %v", inodeNumber, err)
			break
		}

		n := disko.BlockSize - intraOffset
		if n > remaining {
			n = remaining
		}

		blockBuf := make([]byte, disko.BlockSize)
		if n < disko.BlockSize {
			if err := fs.disk.Read(physical, blockBuf); err != nil {
				logf("write: read-modify-write read failed on block %d: %v", physical, err)
				break
			}
		}
		copy(blockBuf[intraOffset:intraOffset+n], data[bytesWritten:bytesWritten+n])

		if err := fs.disk.Write(physical, blockBuf); err != nil {
			logf("write: failed to write block %d: %v", physical, err)
			break
		}

		bytesWritten += n
		remaining -= n
		logicalBlock++
		intraOffset = 0
	}

	if indirectDirty {
		if err := fs.disk.Write(raw.Indirect, indirectBuf); err != nil {
			logf("write: failed to persist indirect block %d: %v", raw.Indirect, err)
		}
	}

	if s := offset + bytesWritten; s > raw.Size {
		raw.Size = s
	}

	encodeInodeAt(inodeBuf, slot, raw)
	if err := fs.writeInodeBlock(block, inodeBuf); err != nil {
		logf("write: failed to persist inode %d: %v", inodeNumber, err)
	}

	if bytesWritten == 0 {
		return -1
	}
	return int64(bytesWritten)
}
