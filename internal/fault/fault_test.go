package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := New(KindLookup, "A1", "not in inventory")
	wrapped := fmt.Errorf("stage unload: %w", err)

	assert.ErrorIs(t, wrapped, ErrLookup)
	assert.NotErrorIs(t, wrapped, ErrConfig)
	assert.Equal(t, KindLookup, KindOf(wrapped))
	assert.True(t, IsFatal(wrapped))
	assert.Contains(t, err.Error(), "A1")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindFormat, "x", nil))
}

func TestKindFatal(t *testing.T) {
	cases := map[Kind]bool{
		KindFormat:              false,
		KindDecodeText:          false,
		KindLookup:              true,
		KindDateRange:           false,
		KindHistory:             false,
		KindConfig:              true,
		KindUnclassifiedSection: false,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Fatal(), string(kind))
	}
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("short read")
	err := Wrap(KindFormat, "mass", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrFormat)
}
