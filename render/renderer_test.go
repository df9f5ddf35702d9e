package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySurfaceError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"lost", errors.New("Surface image is Lost"), ErrSurfaceLost},
		{"outdated", errors.New("surface texture is outdated"), ErrSurfaceLost},
		{"timeout", errors.New("Timeout acquiring next swapchain image"), ErrSurfaceLost},
		{"oom", errors.New("OutOfMemory"), ErrOutOfMemory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifySurfaceError(tc.in)
			assert.True(t, errors.Is(got, tc.want), "got %v", got)
		})
	}
}

func TestClassifySurfaceErrorPassthrough(t *testing.T) {
	in := errors.New("validation error in command encoder")
	got := classifySurfaceError(in)
	assert.False(t, errors.Is(got, ErrSurfaceLost))
	assert.False(t, errors.Is(got, ErrOutOfMemory))
	assert.ErrorIs(t, got, in)
}

func TestClassifyKeepsOriginalMessage(t *testing.T) {
	got := classifySurfaceError(errors.New("surface lost: device removed"))
	assert.Contains(t, got.Error(), "device removed")
}
