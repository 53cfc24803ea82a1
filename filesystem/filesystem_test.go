package filesystem_test

import (
	"testing"

	disko "github.com/Belalaskaik/Simple-File-System"
	"github.com/Belalaskaik/Simple-File-System/disk"
	"github.com/Belalaskaik/Simple-File-System/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newFormattedDisk(t *testing.T, blocks uint32) *disk.Disk {
	t.Helper()
	buf := make([]byte, int(blocks)*disko.BlockSize)
	d := disk.New(bytesextra.NewReadWriteSeeker(buf), blocks)
	require.NoError(t, filesystem.Format(d))
	return d
}

func mustMount(t *testing.T, d *disk.Disk) *filesystem.FileSystem {
	t.Helper()
	fs, err := filesystem.Mount(d)
	require.NoError(t, err)
	return fs
}

func TestFormatThenDebugReportsGeometry(t *testing.T) {
	d := newFormattedDisk(t, 200)
	fs := mustMount(t, d)

	assert.EqualValues(t, 200, fs.TotalBlocks())
	assert.EqualValues(t, 20, fs.InodeBlocks())
	assert.EqualValues(t, 2560, fs.TotalInodes())
	assert.Equal(t, 2560, fs.FreeInodeCount())

	require.NoError(t, filesystem.Debug(d))
}

func TestCreateIndicesAreDenseThenExhausted(t *testing.T) {
	d := newFormattedDisk(t, 10)
	fs := mustMount(t, d)

	for want := int64(0); want < int64(fs.TotalInodes()); want++ {
		got := fs.Create()
		require.Equal(t, want, got)
	}

	assert.EqualValues(t, -1, fs.Create())
}

func TestCopyRoundTrip(t *testing.T) {
	d := newFormattedDisk(t, 10)
	fs := mustMount(t, d)

	inode := fs.Create()
	require.EqualValues(t, 0, inode)

	payload := make([]byte, 1234)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	n := fs.Write(uint32(inode), payload, uint32(len(payload)), 0)
	require.EqualValues(t, 1234, n)
	assert.EqualValues(t, 1234, fs.Stat(uint32(inode)))

	readBack := make([]byte, 1234)
	got := fs.Read(uint32(inode), readBack, 1234, 0)
	require.EqualValues(t, 1234, got)
	assert.Equal(t, payload, readBack)
}

func TestIndirectBoundaryWrite(t *testing.T) {
	d := newFormattedDisk(t, 64)
	fs := mustMount(t, d)

	inode := fs.Create()
	require.GreaterOrEqual(t, inode, int64(0))

	length := filesystem.PointersPerInode*disko.BlockSize + 17
	payload := make([]byte, length)
	for i := range payload {
		payload[i] = byte((i * 7) % 256)
	}

	n := fs.Write(uint32(inode), payload, uint32(length), 0)
	require.EqualValues(t, length, n)
	assert.EqualValues(t, length, fs.Stat(uint32(inode)))

	readBack := make([]byte, length)
	got := fs.Read(uint32(inode), readBack, uint32(length), 0)
	require.EqualValues(t, length, got)
	assert.Equal(t, payload, readBack)
}

func TestRemovalFreesSpace(t *testing.T) {
	d := newFormattedDisk(t, 64)
	fs := mustMount(t, d)

	before := fs.FreeBlockCount()

	inode := fs.Create()
	require.GreaterOrEqual(t, inode, int64(0))

	payload := make([]byte, 6*disko.BlockSize)
	n := fs.Write(uint32(inode), payload, uint32(len(payload)), 0)
	require.EqualValues(t, len(payload), n)

	afterWrite := fs.FreeBlockCount()
	assert.Equal(t, 7, before-afterWrite) // 6 data blocks + 1 indirect block

	assert.True(t, fs.Remove(uint32(inode)))
	after := fs.FreeBlockCount()
	assert.Equal(t, before, after)

	assert.EqualValues(t, -1, fs.Stat(uint32(inode)))

	reused := fs.Create()
	assert.Equal(t, inode, reused)
}

func TestMountUnmountIdempotence(t *testing.T) {
	d := newFormattedDisk(t, 20)

	fs1 := mustMount(t, d)
	free1 := fs1.FreeBlockCount()
	freeInodes1 := fs1.FreeInodeCount()
	fs1.Unmount()

	fs2 := mustMount(t, d)
	assert.Equal(t, free1, fs2.FreeBlockCount())
	assert.Equal(t, freeInodes1, fs2.FreeInodeCount())
	fs2.Unmount()
}

func TestFormatErasesEverything(t *testing.T) {
	d := newFormattedDisk(t, 20)
	fs := mustMount(t, d)

	inode := fs.Create()
	require.GreaterOrEqual(t, inode, int64(0))
	n := fs.Write(uint32(inode), []byte("hello"), 5, 0)
	require.EqualValues(t, 5, n)
	fs.Unmount()

	require.NoError(t, filesystem.Format(d))
	fs2 := mustMount(t, d)
	assert.Equal(t, int(fs2.TotalInodes()), fs2.FreeInodeCount())

	dataBlocks := int(fs2.TotalBlocks() - fs2.InodeBlocks() - 1)
	assert.Equal(t, dataBlocks, fs2.FreeBlockCount())
}

func TestNoZeroDetectionSurvivesRemount(t *testing.T) {
	d := newFormattedDisk(t, 20)
	fs := mustMount(t, d)

	inode := fs.Create()
	require.GreaterOrEqual(t, inode, int64(0))

	zeros := make([]byte, disko.BlockSize)
	n := fs.Write(uint32(inode), zeros, uint32(len(zeros)), 0)
	require.EqualValues(t, len(zeros), n)

	before := fs.FreeBlockCount()
	fs.Unmount()

	fs2 := mustMount(t, d)
	after := fs2.FreeBlockCount()
	assert.Equal(t, before, after)
	assert.EqualValues(t, len(zeros), fs2.Stat(uint32(inode)))
}

func TestInvalidMagicFailsMountWithoutSideEffects(t *testing.T) {
	d := newFormattedDisk(t, 10)

	zero := make([]byte, disko.BlockSize)
	require.NoError(t, d.Write(0, zero))

	fs, err := filesystem.Mount(d)
	require.Error(t, err)
	assert.Nil(t, fs)
	assert.False(t, d.Mounted())
}

func TestOverwriteDoesNotShrinkReportedSize(t *testing.T) {
	d := newFormattedDisk(t, 10)
	fs := mustMount(t, d)

	inode := fs.Create()
	require.GreaterOrEqual(t, inode, int64(0))

	n := fs.Write(uint32(inode), []byte("0123456789"), 10, 0)
	require.EqualValues(t, 10, n)
	assert.EqualValues(t, 10, fs.Stat(uint32(inode)))

	n = fs.Write(uint32(inode), []byte("ab"), 2, 0)
	require.EqualValues(t, 2, n)
	assert.EqualValues(t, 10, fs.Stat(uint32(inode)))

	readBack := make([]byte, 10)
	got := fs.Read(uint32(inode), readBack, 10, 0)
	require.EqualValues(t, 10, got)
	assert.Equal(t, "ab23456789", string(readBack))
}
