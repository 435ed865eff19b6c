package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexview/internal/gpu"
)

func TestNewFramebuffer(t *testing.T) {
	ctx, rec := newTestContext(t)
	fb, err := NewFramebuffer(ctx, 320, 200, FramebufferSpec{ColorAttachments: 2, Depth: true})
	require.NoError(t, err)

	rf := rec.Framebuffers[fb.ID()]
	require.NotNil(t, rf)
	assert.Equal(t, 2, rf.DrawBuffers)
	assert.Equal(t, fb.Color(0).ID(), rf.Colors[gpu.ColorAttachment(0)])
	assert.Equal(t, fb.Color(1).ID(), rf.Colors[gpu.ColorAttachment(1)])
	assert.Nil(t, fb.Color(2))
	assert.Equal(t, gpu.FormatDepth24Stencil8, rec.Renderbuffers[rf.Depth].Format)
	assert.Equal(t, gpu.DefaultFramebuffer, rec.BoundFramebuffer)

	for _, c := range fb.Colors() {
		rt := rec.Textures[c.ID()]
		assert.Equal(t, gpu.FormatRGBA16F, rt.Internal)
		assert.Equal(t, int32(320), rt.Width)
		assert.Equal(t, gpu.ClampToEdge, rt.Sampler.WrapS)
		assert.False(t, rt.Mipmapped)
	}

	fb.Bind()
	assert.Equal(t, fb.ID(), rec.BoundFramebuffer)
	assert.Equal(t, [4]int32{0, 0, 320, 200}, rec.ViewportSize)
}

func TestNewFramebufferRejectsBadSpec(t *testing.T) {
	ctx, rec := newTestContext(t)
	_, err := NewFramebuffer(ctx, 0, 10, FramebufferSpec{ColorAttachments: 1})
	assert.Error(t, err)
	_, err = NewFramebuffer(ctx, 10, 10, FramebufferSpec{})
	assert.Error(t, err)
	_, err = NewFramebuffer(ctx, 10, 10, FramebufferSpec{ColorAttachments: MaxColorAttachments + 1})
	assert.Error(t, err)
	assert.Zero(t, rec.LiveObjects())
}

func TestFramebufferIncomplete(t *testing.T) {
	ctx, rec := newTestContext(t)
	rec.Incomplete = true

	fb, err := NewFramebuffer(ctx, 64, 64, FramebufferSpec{ColorAttachments: 1})
	require.NotNil(t, fb)
	assert.ErrorIs(t, err, gpu.ErrFramebufferIncomplete)
	assert.ErrorIs(t, fb.Status(), gpu.ErrFramebufferIncomplete)

	rec.Incomplete = false
	require.NoError(t, fb.Resize(128, 64))
	assert.NoError(t, fb.Status())
}

func TestFramebufferResize(t *testing.T) {
	ctx, rec := newTestContext(t)
	fb, err := NewFramebuffer(ctx, 64, 64, FramebufferSpec{ColorAttachments: 1, Depth: true})
	require.NoError(t, err)
	old := fb.Color(0).ID()
	created := rec.Count("CreateFramebuffer")

	require.NoError(t, fb.Resize(64, 64))
	assert.Equal(t, created, rec.Count("CreateFramebuffer"), "same size keeps the targets")

	require.NoError(t, fb.Resize(256, 128))
	assert.True(t, rec.Textures[old].Deleted)
	assert.Equal(t, int32(256), rec.Textures[fb.Color(0).ID()].Width)
	assert.Equal(t, int32(128), rec.Renderbuffers[rec.Framebuffers[fb.ID()].Depth].Height)
	w, h := fb.Size()
	assert.Equal(t, [2]int{256, 128}, [2]int{w, h})
	assert.Equal(t, 3, rec.LiveObjects())

	assert.Error(t, fb.Resize(-1, 5))
	assert.Equal(t, 3, rec.LiveObjects())

	fb.Release()
	fb.Release()
	assert.Zero(t, rec.LiveObjects())
	assert.ErrorIs(t, fb.Status(), ErrReleased)
	assert.ErrorIs(t, fb.Resize(10, 10), ErrReleased)
}
