package filesystem

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

func decodeSuperBlock(buf []byte) rawSuperBlock {
	var sb rawSuperBlock
	binary.Read(bytes.NewReader(buf), binary.LittleEndian, &sb)
	return sb
}

func encodeSuperBlock(buf []byte, sb rawSuperBlock) {
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, &sb)
}

func decodeInodeAt(blockBuf []byte, slot uint32) rawInode {
	off := slot * rawInodeSize
	var ri rawInode
	binary.Read(bytes.NewReader(blockBuf[off:off+rawInodeSize]), binary.LittleEndian, &ri)
	return ri
}

func encodeInodeAt(blockBuf []byte, slot uint32, ri rawInode) {
	off := slot * rawInodeSize
	w := bytewriter.New(blockBuf[off : off+rawInodeSize])
	binary.Write(w, binary.LittleEndian, &ri)
}

func decodeIndirectBlock(buf []byte) [PointersPerBlock]uint32 {
	var ptrs [PointersPerBlock]uint32
	binary.Read(bytes.NewReader(buf), binary.LittleEndian, &ptrs)
	return ptrs
}

func encodeIndirectBlock(buf []byte, ptrs [PointersPerBlock]uint32) {
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, &ptrs)
}
