package filesystem

import (
	"fmt"

	disko "github.com/Belalaskaik/Simple-File-System"
	"github.com/Belalaskaik/Simple-File-System/disk"
)

// Debug reads the superblock and inode table off d and prints them to the
// log, one line per field, without requiring d to be mounted. For every
// valid inode it prints its index, size, and direct pointers including
// zeros, then — only if the indirect pointer is nonzero — the indirect
// block number followed by that block's nonzero entries.
func Debug(d *disk.Disk) error {
	block0 := make([]byte, disko.BlockSize)
	if err := d.Read(0, block0); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	sb := decodeSuperBlock(block0)

	logf("SuperBlock:")
	logf("    magic number is valid: %v", sb.Magic == disko.MagicNumber)
	logf("    %d blocks", sb.Blocks)
	logf("    %d inode blocks", sb.InodeBlocks)
	logf("    %d inodes", sb.Inodes)

	inodeBuf := make([]byte, disko.BlockSize)
	indirectBuf := make([]byte, disko.BlockSize)

	for ib := uint32(1); ib <= sb.InodeBlocks; ib++ {
		if err := d.Read(ib, inodeBuf); err != nil {
			return disko.ErrIOFailed.Wrap(err)
		}
		for slot := uint32(0); slot < InodesPerBlock; slot++ {
			raw := decodeInodeAt(inodeBuf, slot)
			if raw.Valid == 0 {
				continue
			}

			inodeNumber := (ib-1)*InodesPerBlock + slot
			logf("Inode %d:", inodeNumber)
			logf("    size: %d bytes", raw.Size)
			logf("    direct blocks: %s", formatPointers(raw.Direct[:]))

			if raw.Indirect != 0 {
				logf("    indirect block: %d", raw.Indirect)
				if err := d.Read(raw.Indirect, indirectBuf); err != nil {
					return disko.ErrIOFailed.Wrap(err)
				}
				ptrs := decodeIndirectBlock(indirectBuf)
				nonzero := make([]uint32, 0, PointersPerBlock)
				for _, p := range ptrs {
					if p != 0 {
						nonzero = append(nonzero, p)
					}
				}
				logf("    indirect data blocks: %s", formatPointers(nonzero))
			}
		}
	}
	return nil
}

func formatPointers(ptrs []uint32) string {
	s := ""
	for i, p := range ptrs {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", p)
	}
	return s
}
