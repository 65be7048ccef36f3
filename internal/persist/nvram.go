package persist

import (
	"fmt"
	"io"
	"os"
)

// BlockDevice is the byte-addressable store the primary tier writes
// through. *os.File satisfies it; on the device this was EEPROM.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	Sync() error
}

// NVStore keeps one record at a fixed offset on a block device.
type NVStore struct {
	dev    BlockDevice
	offset int64
}

// NewNVStore wraps a block device at the given record offset.
func NewNVStore(dev BlockDevice, offset int64) *NVStore {
	return &NVStore{dev: dev, offset: offset}
}

func (n *NVStore) Name() string { return "nvram" }

// Save writes the record in place and syncs the device.
func (n *NVStore) Save(rec Record) error {
	buf := encode(rec)
	if _, err := n.dev.WriteAt(buf, n.offset); err != nil {
		return fmt.Errorf("nvram write: %w", err)
	}
	if err := n.dev.Sync(); err != nil {
		return fmt.Errorf("nvram sync: %w", err)
	}
	return nil
}

// Load reads and verifies the record. A fresh (empty) region reads
// short and is rejected like any other invalid record.
func (n *NVStore) Load() (Record, error) {
	buf := make([]byte, recordSize)
	if _, err := n.dev.ReadAt(buf, n.offset); err != nil {
		return Record{}, fmt.Errorf("nvram read: %w", err)
	}
	return decode(buf)
}

// OpenRegion opens the file backing the primary tier, creating it if
// needed. The caller owns closing it.
func OpenRegion(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open region: %w", err)
	}
	return f, nil
}
