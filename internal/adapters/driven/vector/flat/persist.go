package flat

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/fsstore"
)

// fileMagic identifies a flat index file.
const fileMagic = "EVFI"

// fileHeader is the JSON header preceding the raw matrix: the id array
// plus the shared dimensionality.
type fileHeader struct {
	IDs []string `json:"ids"`
	Dim int      `json:"dim"`
}

// save writes the index as one file: magic, a length-prefixed JSON
// header, then the embedding matrix as little-endian float32 rows.
// The write is atomic so a reader never sees a torn file.
// Callers hold the lock.
func (idx *Index) save() error {
	if idx.path == "" {
		return nil // Purely in-memory index.
	}

	header, err := json.Marshal(fileHeader{IDs: idx.ids, Dim: idx.dim})
	if err != nil {
		return fmt.Errorf("marshalling header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(fileMagic)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(header))); err != nil {
		return fmt.Errorf("writing header length: %w", err)
	}
	buf.Write(header)

	for _, vec := range idx.vecs {
		for _, v := range vec {
			if err := binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return fmt.Errorf("writing matrix: %w", err)
			}
		}
	}

	return fsstore.AtomicWrite(idx.path, buf.Bytes())
}

// load restores the index from disk. A missing file is an empty index.
func (idx *Index) load() error {
	if idx.path == "" {
		return nil
	}

	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading index file: %w", err)
	}

	r := bytes.NewReader(data)
	magic := make([]byte, len(fileMagic))
	if _, err := r.Read(magic); err != nil || string(magic) != fileMagic {
		return fmt.Errorf("bad index file magic")
	}

	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return fmt.Errorf("reading header length: %w", err)
	}
	if int(headerLen) > r.Len() {
		return fmt.Errorf("truncated index header")
	}

	headerBytes := make([]byte, headerLen)
	if _, err := r.Read(headerBytes); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	var header fileHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return fmt.Errorf("unmarshalling header: %w", err)
	}

	if header.Dim > 0 && idx.dim != 0 && header.Dim != idx.dim {
		return fmt.Errorf("index file holds %d-dimensional vectors, configured for %d",
			header.Dim, idx.dim)
	}
	if header.Dim > 0 {
		idx.dim = header.Dim
	}

	for i := range header.IDs {
		vec := make([]float32, idx.dim)
		for j := 0; j < idx.dim; j++ {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				// Truncated matrix: keep the rows that fully landed.
				header.IDs = header.IDs[:i]
				break
			}
			vec[j] = math.Float32frombits(bits)
		}
		if i >= len(header.IDs) {
			break
		}
		idx.ids = append(idx.ids, header.IDs[i])
		idx.byID[header.IDs[i]] = i
		idx.vecs = append(idx.vecs, vec)
	}

	return nil
}
