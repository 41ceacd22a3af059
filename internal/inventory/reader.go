// Package inventory builds the in-memory assembly map from the plant inventory database and writes it back.
package inventory

import (
	"fmt"
	"io"
	"os"

	"poolsim/internal/fault"
	"poolsim/internal/record"
)

// Tail is the byte remainder after the last whole record.
type Tail []byte

// ReadChunks reads r to the end and cuts it into record-size chunks. Leftover bytes are returned as the tail,
// never as an error.
func ReadChunks(r io.Reader, recordSize int) ([]record.Chunk, Tail, error) {
	if recordSize <= 0 {
		return nil, nil, fault.New(fault.KindConfig, "record size", "must be positive, got %d", recordSize)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	n := len(data) / recordSize
	chunks := make([]record.Chunk, n)
	for i := range chunks {
		lo, hi := i*recordSize, (i+1)*recordSize
		chunks[i] = record.Chunk(data[lo:hi:hi])
	}
	var tail Tail
	if rest := data[n*recordSize:]; len(rest) > 0 {
		tail = Tail(rest)
	}
	return chunks, tail, nil
}

// ReadFile is ReadChunks over a file.
func ReadFile(path string, recordSize int) ([]record.Chunk, Tail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()
	return ReadChunks(f, recordSize)
}
