package nfc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagKind(t *testing.T) {
	assert.Equal(t, "MF Ultralight", KindUltralight.String())
	assert.Equal(t, "MF Ultralight C", KindUltralightC.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())

	assert.True(t, KindUltralight.Supported())
	assert.True(t, KindUltralightC.Supported())
	assert.False(t, KindUnsupported.Supported())
}

func TestIdentify(t *testing.T) {
	tag := NewMockUltralightC("04a1b2c3d4e5f6")
	id := Identify(tag)

	assert.Equal(t, TagIdentity{UID: "04a1b2c3d4e5f6", Kind: KindUltralightC, Type: "MF Ultralight C"}, id)
	assert.Equal(t, "04a1b2c3d4e5f6 (MF Ultralight C)", id.String())
	assert.Equal(t, 0, tag.CallCount("Connect"), "identify must not touch the tag")
}

func TestUnsupportedTag(t *testing.T) {
	releases := 0
	tag := newUnsupportedTag("01020304", "MIFARE Classic 1K", func() error {
		releases++
		return nil
	})

	assert.Equal(t, KindUnsupported, tag.Kind())
	assert.Equal(t, "MIFARE Classic 1K", tag.Type())

	assert.Equal(t, ErrCodeConnectFailed, GetErrorCode(tag.Connect()))
	assert.True(t, IsNotSupportedError(tag.Authenticate(DefaultKey)))
	_, err := tag.ReadPage(4)
	assert.True(t, IsNotSupportedError(err))
	assert.True(t, IsNotSupportedError(tag.WritePage(4, Page{})))

	require.NoError(t, tag.Disconnect())
	require.NoError(t, tag.Disconnect())
	assert.Equal(t, 1, releases)
}

func TestMockUltralightTag(t *testing.T) {
	tag := NewMockUltralightC("04aa")
	tag.Memory[5] = Page{1, 2, 3, 4}
	tag.WriteErrors[6] = errors.New("locked")

	_, err := tag.ReadPage(5)
	assert.Error(t, err, "reads need a connection")

	require.NoError(t, tag.Connect())
	p, err := tag.ReadPage(5)
	require.NoError(t, err)
	assert.Equal(t, Page{1, 2, 3, 4}, p)

	assert.Error(t, tag.WritePage(6, Page{9}))
	require.NoError(t, tag.WritePage(7, Page{9}))
	assert.Equal(t, Page{9}, tag.Memory[7])
	assert.Equal(t, []byte{6, 7}, tag.Written)

	assert.True(t, IsAuthError(tag.Authenticate(Key{})))
	require.NoError(t, tag.Authenticate(DefaultKey))
	assert.True(t, tag.Authenticated)

	plain := NewMockUltralightTag("04bb", KindUltralight)
	assert.True(t, IsNotSupportedError(plain.Authenticate(DefaultKey)))
}
