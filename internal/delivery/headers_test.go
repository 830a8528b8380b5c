package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamHeaders_BiliBili(t *testing.T) {
	h := UpstreamHeaders("upos-sz-mirrorcos.bilivideo.com")
	assert.Equal(t, "https://www.bilibili.com/", h["Referer"])
	assert.Equal(t, "https://www.bilibili.com", h["Origin"])
	assert.NotEmpty(t, h["User-Agent"])
}

func TestUpstreamHeaders_YouTube(t *testing.T) {
	h := UpstreamHeaders("rr1---sn-abc.googlevideo.com")
	assert.Equal(t, "https://www.youtube.com/", h["Referer"])
	assert.Empty(t, h["Origin"])
}

func TestUpstreamHeaders_Pixiv(t *testing.T) {
	h := UpstreamHeaders("i.pximg.net")
	assert.Equal(t, "https://www.pixiv.net/", h["Referer"])
}

func TestUpstreamHeaders_Unknown(t *testing.T) {
	assert.Nil(t, UpstreamHeaders("cdn.example.com"))
}
