// Package disk implements the SimpleFS disk emulator: a backing file (or, in
// tests, an in-memory buffer) presented as a fixed-size array of fixed-size
// blocks.
//
// Disk is deliberately thin. It performs the sanity checks and accounting
// the file system layer depends on and nothing else: no caching, no
// buffering beyond a single block, no concurrency control.
package disk

import (
	"io"
	"log"
	"os"

	disko "github.com/Belalaskaik/Simple-File-System"
)

// Backend is the storage a Disk reads and writes through. *os.File satisfies
// it directly; tests wrap an in-memory buffer with
// github.com/xaionaro-go/bytesextra to exercise the same code path without
// touching the file system.
type Backend interface {
	io.ReadWriteSeeker
}

// Disk is a handle to a backing store presented as Blocks fixed-size blocks.
// The zero value is not usable; construct one with Open or New.
type Disk struct {
	store   Backend
	closer  io.Closer
	Blocks  uint32
	reads   uint64
	writes  uint64
	mounted bool
}

// Open creates or opens the backing file at path read-write and truncates it
// to exactly blocks*disko.BlockSize bytes.
func Open(path string, blocks uint32) (*Disk, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, disko.ErrIOFailed.Wrap(err)
	}

	size := int64(blocks) * int64(disko.BlockSize)
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, disko.ErrIOFailed.Wrap(err)
	}

	return &Disk{store: file, closer: file, Blocks: blocks}, nil
}

// New wraps an already-open backend as a Disk of the given number of blocks.
// It's used by tests to drive the disk emulator against an in-memory buffer
// instead of a real file.
func New(store Backend, blocks uint32) *Disk {
	closer, _ := store.(io.Closer)
	return &Disk{store: store, closer: closer, Blocks: blocks}
}

// Close releases the backing file and reports the accumulated read/write
// counts, mirroring the original disk_close diagnostic line.
func (d *Disk) Close() error {
	var err error
	if d.closer != nil {
		err = d.closer.Close()
	}
	log.Printf("disk closed: %d reads, %d writes", d.reads, d.writes)
	if err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	return nil
}

// Reads returns the number of successful block reads since Open/New.
func (d *Disk) Reads() uint64 { return d.reads }

// Writes returns the number of successful block writes since Open/New.
func (d *Disk) Writes() uint64 { return d.writes }

// Mounted reports whether the file system layer currently has this disk
// bound to a mount.
func (d *Disk) Mounted() bool { return d.mounted }

// SetMounted is used exclusively by the file system layer to record its
// exclusive ownership of the disk for the duration of a mount.
func (d *Disk) SetMounted(mounted bool) { d.mounted = mounted }

func (d *Disk) sanityCheck(block uint32, buf []byte) error {
	if d.store == nil {
		return disko.ErrInvalidArgument.WithMessage("disk is not open")
	}
	if block >= d.Blocks {
		return disko.ErrArgumentOutOfRange.WithMessage("block number out of range")
	}
	if len(buf) != disko.BlockSize {
		return disko.ErrInvalidArgument.WithMessage("buffer must be exactly one block")
	}
	return nil
}

// Read reads block number `block` into buf, which must be exactly
// disko.BlockSize bytes. A short read is reported as failure, never as a
// partial result.
func (d *Disk) Read(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}

	offset := int64(block) * int64(disko.BlockSize)
	if _, err := d.store.Seek(offset, io.SeekStart); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}

	n, err := io.ReadFull(d.store, buf)
	if err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	if n != disko.BlockSize {
		return disko.ErrIOFailed.WithMessage("short read")
	}

	d.reads++
	return nil
}

// Write writes buf, which must be exactly disko.BlockSize bytes, to block
// number `block`. A short write is reported as failure.
func (d *Disk) Write(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}

	offset := int64(block) * int64(disko.BlockSize)
	if _, err := d.store.Seek(offset, io.SeekStart); err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}

	n, err := d.store.Write(buf)
	if err != nil {
		return disko.ErrIOFailed.Wrap(err)
	}
	if n != disko.BlockSize {
		return disko.ErrIOFailed.WithMessage("short write")
	}

	d.writes++
	return nil
}
