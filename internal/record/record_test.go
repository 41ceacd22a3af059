package record

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolsim/internal/fault"
	"poolsim/internal/fixedtext"
)

var cp1251 = fixedtext.MustCodePage("cp1251")

func sampleTemplate() Template {
	var heat, act [ActivityPoints]float64
	for i := range heat {
		heat[i] = float64(100 - i*5)
		act[i] = float64(1000 - i*50)
	}
	return Template{
		Family:   "ТВС",
		Serial:   "4211",
		Index:    "7",
		Control:  "ПС-12",
		Design:   "1000.3",
		Bridge:   61,
		Cart:     12,
		Heat:     heat,
		Activity: act,
		Masses: Masses{
			UO2: 491000, U235: 4500.5, U236: 600.25, U238: 420000,
			Pu238: 10.5, Pu239: 2400, Pu240: 900, Pu241: 500, Pu242: 200, Assembly: 745.5,
		},
		Campaigns: []TemplateCampaign{
			{Number: 30, Begin: "01.02.2021", End: "15.01.2022", Burnup: 14.25},
			{Number: 31, Begin: "20.02.2022", End: "01.06.2025", Burnup: 41.5},
		},
	}
}

func TestLayoutOffsets(t *testing.T) {
	// Spot checks against the legacy type declaration.
	cases := map[string]int{
		"control":                    26,
		"control.history[0]":         110,
		"control.loaded":             530,
		"activity[0].heat":           618,
		"activity[13].activity":      786 - 6,
		"bridge":                     916,
		"cart":                       917,
		"u235":                       940,
		"mass":                       988,
		"history.campaigns[0].begin": 1012,
		"history.campaigns[4].cart":  1011 + 249,
		"history.moves[12].when":     1011 + 250 + 12*13 + 2,
		"owner":                      1585,
		"context":                    1654,
		"tail":                       1686,
	}
	for path, want := range cases {
		off, _, err := AssemblyLayout.Locate(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, off, path)
	}
}

func TestLocateErrors(t *testing.T) {
	for _, path := range []string{"nope", "bridge.x", "activity[14]", "bridge[0]", "activity[x]", "history.campaigns[1"} {
		_, _, err := AssemblyLayout.Locate(path)
		assert.Error(t, err, path)
	}
}

func TestValidateSize(t *testing.T) {
	assert.NoError(t, ValidateSize(make(Chunk, Size), Size))
	assert.ErrorIs(t, ValidateSize(make(Chunk, Size-1), Size), fault.ErrFormat)
	assert.ErrorIs(t, ValidateSize(make(Chunk, Size), 1686), fault.ErrConfig)
}

func TestSliceAliasesChunk(t *testing.T) {
	c := make(Chunk, Size)
	raw := Slice(c)
	raw.Bridge[0] = 77
	assert.Equal(t, byte(77), c[916])
	assert.Len(t, raw.Tail, Size-DocumentedSize)
	assert.Len(t, raw.Control.History[14].Cart, 2)
}

func TestDecode_Template(t *testing.T) {
	c, err := sampleTemplate().Build(cp1251)
	require.NoError(t, err)

	rec, err := NewDecoder(cp1251).DecodeChunk(c, Size)
	require.NoError(t, err)

	assert.Equal(t, "ТВС42117", rec.ID.String())
	assert.Equal(t, "ПС-12", rec.Control.Serial)
	assert.Equal(t, "1000.3", rec.Design)
	assert.Equal(t, uint8(61), rec.Bridge)
	assert.Equal(t, uint8(12), rec.Cart)
	assert.Equal(t, byte(' '), rec.Owner)
	assert.Equal(t, 4500.5, rec.Masses.U235)
	assert.Equal(t, 745.5, rec.Masses.Assembly)
	assert.Equal(t, 100.0, rec.Activity[0].ResidualHeat)
	assert.Equal(t, 35.0, rec.Activity[13].ResidualHeat)

	want := []CampaignEntry{
		{Slot: 0, Number: 30, Begin: "01.02.2021", End: "15.01.2022", Burnup: 14.25},
		{Slot: 1, Number: 31, Begin: "20.02.2022", End: "01.06.2025", Burnup: 41.5},
	}
	if diff := cmp.Diff(want, rec.Campaigns); diff != "" {
		t.Errorf("campaigns mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_UnusedCampaignSkipped(t *testing.T) {
	tpl := sampleTemplate()
	c, err := tpl.Build(cp1251)
	require.NoError(t, err)

	// Clear slot 0; slot 1 survives and keeps its slot number.
	require.NoError(t, NewWriter(cp1251).ClearBlock(c, "history.campaigns[0]"))

	rec, err := NewDecoder(cp1251).DecodeChunk(c, Size)
	require.NoError(t, err)
	require.Len(t, rec.Campaigns, 1)
	assert.Equal(t, 1, rec.Campaigns[0].Slot)
	assert.Equal(t, "01.06.2025", rec.Campaigns[0].End)
}

func TestDecode_FieldFailuresCollected(t *testing.T) {
	c, err := sampleTemplate().Build(cp1251)
	require.NoError(t, err)

	// Corrupt two independent fields: a length byte past capacity and an undefined code-page byte.
	off, _, err := AssemblyLayout.Locate("mark")
	require.NoError(t, err)
	c[off] = 11
	off, _, err = AssemblyLayout.Locate("supplier")
	require.NoError(t, err)
	c[off], c[off+1] = 1, 0x98

	rec, err := NewDecoder(cp1251).DecodeChunk(c, Size)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, fault.ErrFormat)
	assert.ErrorIs(t, err, fault.ErrDecodeText)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var fe *FieldError
		require.True(t, errors.As(e, &fe))
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"mark", "supplier"}, fields)
}

func TestDecodeChunk_WrongSize(t *testing.T) {
	_, err := NewDecoder(cp1251).DecodeChunk(make(Chunk, 100), Size)
	assert.ErrorIs(t, err, fault.ErrFormat)
}

func TestPatchCoordinate(t *testing.T) {
	c, err := sampleTemplate().Build(cp1251)
	require.NoError(t, err)

	require.NoError(t, PatchCoordinate(c, 88, 3))
	rec, err := NewDecoder(cp1251).DecodeChunk(c, Size)
	require.NoError(t, err)
	assert.Equal(t, uint8(88), rec.Bridge)
	assert.Equal(t, uint8(3), rec.Cart)

	assert.ErrorIs(t, PatchCoordinate(c, 1001, 3), fault.ErrFormat)
	assert.ErrorIs(t, PatchCoordinate(c, 10, 300), fault.ErrFormat)
	assert.Equal(t, byte(88), c[916], "failed patch leaves the record untouched")
}

func TestWriterKindMismatch(t *testing.T) {
	c := make(Chunk, Size)
	w := NewWriter(cp1251)
	assert.ErrorIs(t, w.SetText(c, "bridge", "x"), fault.ErrFormat)
	assert.ErrorIs(t, w.SetReal48(c, "design", 1), fault.ErrFormat)
	assert.ErrorIs(t, w.SetWord(c, "way", 70000), fault.ErrFormat)
	assert.NoError(t, w.SetWord(c, "control.history[2].bridge", 1200))

	// An all-zero chunk is a valid, empty record.
	rec, err := NewDecoder(cp1251).Decode(Slice(c))
	require.NoError(t, err)
	assert.Equal(t, uint16(1200), rec.Control.History[2].Bridge)
	assert.Empty(t, rec.Campaigns)
	assert.Equal(t, "", rec.ID.String())
}
