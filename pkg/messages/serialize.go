package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/klauspost/compress/zstd"
)

// SerializeSnapshot encodes a snapshot as zstd-compressed JSON for storage.
func SerializeSnapshot(snapshot types.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

func DeserializeSnapshot(data []byte) (types.Snapshot, error) {
	var snapshot types.Snapshot

	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return snapshot, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return snapshot, fmt.Errorf("failed to read decompressed snapshot: %v", err)
	}
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return snapshot, nil
}
