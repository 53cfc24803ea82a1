package filesystem

import (
	disko "github.com/Belalaskaik/Simple-File-System"
)

// PointersPerInode is the number of direct data-block pointers stored inline
// in every inode.
const PointersPerInode = 5

// rawInode is the exact on-disk representation of one inode: Valid (0 or 1),
// Size in bytes, PointersPerInode direct block numbers, and one indirect
// block number. All fields are 32-bit and encoded little-endian regardless
// of the host's byte order.
type rawInode struct {
	Valid    uint32
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

const rawInodeSize = 4 + 4 + PointersPerInode*4 + 4 // 32 bytes

// InodesPerBlock is the number of packed inode records per inode-table
// block.
const InodesPerBlock = disko.BlockSize / rawInodeSize

// PointersPerBlock is the number of 32-bit block pointers that fit in one
// indirect block.
const PointersPerBlock = disko.BlockSize / 4

// MaxFileSize is the largest size, in bytes, an inode can describe: every
// direct pointer plus every indirect pointer, each spanning one full block.
const MaxFileSize = (PointersPerInode + PointersPerBlock) * disko.BlockSize

// rawSuperBlock is the exact on-disk layout of block 0.
type rawSuperBlock struct {
	Magic       uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// ceilDiv computes ceil(numerator / divisor) without floating point.
func ceilDiv(numerator, divisor uint32) uint32 {
	return (numerator + divisor - 1) / divisor
}

// inodeBlockAndSlot maps an inode number to the 1-indexed inode-table block
// that holds it and the inode's slot within that block.
func inodeBlockAndSlot(inodeNumber uint32) (block uint32, slot uint32) {
	return inodeNumber/InodesPerBlock + 1, inodeNumber % InodesPerBlock
}
