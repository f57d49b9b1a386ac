package gitdir

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Index is the parsed staging area.
type Index struct {
	Version int
	Entries []IndexEntry
}

// IndexEntry is one staged path. Stage is 0 for a normally staged entry and
// 1 (base), 2 (ours) or 3 (theirs) while the path is unmerged.
type IndexEntry struct {
	Path  string
	Mode  uint32
	Hash  string
	Size  uint32
	MTime time.Time
	Stage int
}

const (
	indexSignature = "DIRC"

	// Fixed-width portion of an entry: ctime(8) mtime(8) dev(4) ino(4)
	// mode(4) uid(4) gid(4) size(4) sha(20) flags(2).
	indexEntryFixedSize = 62

	flagExtended = 0x4000
	flagNameMask = 0x0FFF
)

// ReadIndex parses the binary index (versions 2 and 3; version 4 path
// compression is not supported). A missing index is an empty one, the normal
// state of a fresh repository.
func (d *Dir) ReadIndex() (*Index, error) {
	f, err := os.Open(filepath.Join(d.GitDir, "index"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{Version: 2}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading index header: %w", err)
	}
	if string(header[0:4]) != indexSignature {
		return nil, fmt.Errorf("invalid index signature %q", header[0:4])
	}
	version := binary.BigEndian.Uint32(header[4:8])
	if version != 2 && version != 3 {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}
	numEntries := binary.BigEndian.Uint32(header[8:12])

	index := &Index{Version: int(version), Entries: make([]IndexEntry, 0, numEntries)}
	for i := uint32(0); i < numEntries; i++ {
		entry, err := readIndexEntry(r)
		if err != nil {
			// A bad read corrupts every subsequent one; stop here.
			return nil, fmt.Errorf("reading index entry %d: %w", i, err)
		}
		index.Entries = append(index.Entries, entry)
	}

	// Extensions and the trailing checksum are not needed for status
	// reconstruction.
	return index, nil
}

func readIndexEntry(r io.Reader) (IndexEntry, error) {
	var entry IndexEntry

	fixed := make([]byte, indexEntryFixedSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return entry, err
	}

	mtimeSec := binary.BigEndian.Uint32(fixed[8:12])
	mtimeNano := binary.BigEndian.Uint32(fixed[12:16])
	entry.MTime = time.Unix(int64(mtimeSec), int64(mtimeNano))
	entry.Mode = binary.BigEndian.Uint32(fixed[24:28])
	entry.Size = binary.BigEndian.Uint32(fixed[36:40])
	entry.Hash = hex.EncodeToString(fixed[40:60])

	flags := binary.BigEndian.Uint16(fixed[60:62])
	entry.Stage = int(flags>>12) & 0x3

	consumed := indexEntryFixedSize
	if flags&flagExtended != 0 {
		extra := make([]byte, 2)
		if _, err := io.ReadFull(r, extra); err != nil {
			return entry, err
		}
		consumed += 2
	}

	nameLen := int(flags & flagNameMask)
	terminatorRead := false
	var pathBuf []byte
	if nameLen < int(flagNameMask) {
		pathBuf = make([]byte, nameLen)
		if _, err := io.ReadFull(r, pathBuf); err != nil {
			return entry, err
		}
		consumed += nameLen
	} else {
		// Overlong path: length is not recorded, scan to the terminator.
		br, ok := r.(*bufio.Reader)
		if !ok {
			return entry, fmt.Errorf("overlong path requires buffered reads")
		}
		raw, err := br.ReadBytes(0)
		if err != nil {
			return entry, err
		}
		pathBuf = bytes.TrimSuffix(raw, []byte{0})
		consumed += len(pathBuf)
		terminatorRead = true
	}
	entry.Path = string(pathBuf)

	// Entries are NUL-terminated, the whole entry padded to a multiple of
	// 8 bytes; the terminator counts toward the padding run (1-8 bytes).
	padding := 8 - consumed%8
	if terminatorRead {
		padding--
	}
	if padding > 0 {
		pad := make([]byte, padding)
		if _, err := io.ReadFull(r, pad); err != nil {
			return entry, err
		}
	}
	return entry, nil
}
