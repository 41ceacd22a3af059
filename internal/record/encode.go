package record

import (
	"encoding/binary"

	"poolsim/internal/fault"
	"poolsim/internal/fixedtext"
	"poolsim/internal/real48"
)

// Writer sets fields of a chunk in place, addressed by AssemblyLayout paths.
type Writer struct {
	CodePage fixedtext.CodePage
}

// NewWriter returns a writer for the given code page.
func NewWriter(cp fixedtext.CodePage) *Writer {
	return &Writer{CodePage: cp}
}

func (w *Writer) locate(c Chunk, path string, want FieldKind) (int, Field, error) {
	if len(c) != Size {
		return 0, Field{}, fault.New(fault.KindFormat, path, "chunk is %d bytes, want %d", len(c), Size)
	}
	off, f, err := AssemblyLayout.Locate(path)
	if err != nil {
		return 0, Field{}, fault.Wrap(fault.KindFormat, path, err)
	}
	if f.Kind != want {
		return 0, Field{}, fault.New(fault.KindFormat, path, "field kind %d, want %d", f.Kind, want)
	}
	return off, f, nil
}

// SetText writes a length-prefixed text field.
func (w *Writer) SetText(c Chunk, path, s string) error {
	off, f, err := w.locate(c, path, KindText)
	if err != nil {
		return err
	}
	b, err := fixedtext.Encode(s, f.Size, w.CodePage)
	if err != nil {
		return fault.Wrap(fault.KindFormat, path, err)
	}
	copy(c[off:off+f.Size], b)
	return nil
}

// SetReal48 writes a Real48 field.
func (w *Writer) SetReal48(c Chunk, path string, v float64) error {
	off, _, err := w.locate(c, path, KindReal48)
	if err != nil {
		return err
	}
	b, err := real48.Encode(v)
	if err != nil {
		return fault.Wrap(fault.KindFormat, path, err)
	}
	copy(c[off:off+real48.Size], b[:])
	return nil
}

// SetByte writes a one-byte field.
func (w *Writer) SetByte(c Chunk, path string, v int) error {
	off, _, err := w.locate(c, path, KindByte)
	if err != nil {
		return err
	}
	if v < 0 || v > 0xFF {
		return fault.New(fault.KindFormat, path, "%d does not fit a byte", v)
	}
	c[off] = byte(v)
	return nil
}

// SetWord writes a little-endian uint16 field.
func (w *Writer) SetWord(c Chunk, path string, v int) error {
	off, _, err := w.locate(c, path, KindWord)
	if err != nil {
		return err
	}
	if v < 0 || v > 0xFFFF {
		return fault.New(fault.KindFormat, path, "%d does not fit a word", v)
	}
	binary.LittleEndian.PutUint16(c[off:off+2], uint16(v))
	return nil
}

// ClearBlock zeroes a block or array element, e.g. "history.campaigns[3]".
func (w *Writer) ClearBlock(c Chunk, path string) error {
	off, f, err := w.locate(c, path, KindBlock)
	if err != nil {
		return err
	}
	clear(c[off : off+f.Size])
	return nil
}

// PatchCoordinate writes an assembly's bridge and cart.
func PatchCoordinate(c Chunk, bridge, cart int) error {
	if cart < 0 || cart > 0xFF {
		return fault.New(fault.KindFormat, "cart", "%d does not fit a byte", cart)
	}
	w := Writer{}
	if err := w.SetByte(c, "bridge", bridge); err != nil {
		return err
	}
	return w.SetByte(c, "cart", cart)
}
