package resultcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		c    Code
		want string
	}{
		{Ok, "ok"},
		{NotFound, "not found"},
		{Truncated, "truncated"},
		{Corrupt, "corrupt"},
		{OutOfRange, "out of range"},
		{NotLoaded, "not loaded"},
		{TooSmall, "buffer too small"},
		{Internal, "internal error"},
		{Code(200), "unknown result code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.String())
	}
}

func TestSentinelsMatchThemselvesViaErrorsIs(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrNotFound, ErrCorrupt)
}

func TestWrapPreservesCodeForErrorsIs(t *testing.T) {
	wrapped := Wrap(ErrCorrupt, "tile 3,4")
	assert.ErrorIs(t, wrapped, ErrCorrupt)
	assert.Equal(t, "tile 3,4: corrupt", wrapped.Error())
	assert.Equal(t, ErrCorrupt, errors.Unwrap(wrapped))
}

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "whatever"))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, Ok},
		{"not found", ErrNotFound, NotFound},
		{"truncated", ErrTruncated, Truncated},
		{"corrupt", ErrCorrupt, Corrupt},
		{"out of range", ErrOutOfRange, OutOfRange},
		{"not loaded", ErrNotLoaded, NotLoaded},
		{"too small", ErrTooSmall, TooSmall},
		{"wrapped", Wrap(ErrNotFound, "x"), NotFound},
		{"plain error", errors.New("boom"), Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
