package disk_test

import (
	"os"
	"testing"

	disko "github.com/Belalaskaik/Simple-File-System"
	"github.com/Belalaskaik/Simple-File-System/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newMemoryDisk(t *testing.T, blocks uint32) *disk.Disk {
	t.Helper()
	buf := make([]byte, int(blocks)*disko.BlockSize)
	backend := bytesextra.NewReadWriteSeeker(buf)
	return disk.New(backend, blocks)
}

func TestReadWriteRoundTrip(t *testing.T) {
	d := newMemoryDisk(t, 4)

	out := make([]byte, disko.BlockSize)
	for i := range out {
		out[i] = byte(i % 251)
	}

	require.NoError(t, d.Write(2, out))

	in := make([]byte, disko.BlockSize)
	require.NoError(t, d.Read(2, in))
	assert.Equal(t, out, in)

	assert.EqualValues(t, 1, d.Reads())
	assert.EqualValues(t, 1, d.Writes())
}

func TestReadRejectsOutOfRangeBlock(t *testing.T) {
	d := newMemoryDisk(t, 4)
	buf := make([]byte, disko.BlockSize)
	err := d.Read(4, buf)
	require.Error(t, err)
	assert.EqualValues(t, uint64(0), d.Reads())
}

func TestWriteRejectsWrongSizedBuffer(t *testing.T) {
	d := newMemoryDisk(t, 4)
	err := d.Write(0, make([]byte, disko.BlockSize-1))
	require.Error(t, err)
}

func TestCountersOnlyAdvanceOnSuccess(t *testing.T) {
	d := newMemoryDisk(t, 2)
	buf := make([]byte, disko.BlockSize)

	require.NoError(t, d.Write(0, buf))
	require.NoError(t, d.Write(1, buf))
	require.Error(t, d.Write(2, buf))

	assert.EqualValues(t, 2, d.Writes())
}

func TestMountFlag(t *testing.T) {
	d := newMemoryDisk(t, 1)
	assert.False(t, d.Mounted())
	d.SetMounted(true)
	assert.True(t, d.Mounted())
	d.SetMounted(false)
	assert.False(t, d.Mounted())
}

func TestOpenCreatesFileOfExactSize(t *testing.T) {
	path := t.TempDir() + "/image.bin"
	d, err := disk.Open(path, 8)
	require.NoError(t, err)
	defer d.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 8*disko.BlockSize, info.Size())
}
