package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCommissionIsComplete(t *testing.T) {
	now := time.Now()
	primary := Image{Name: "primary"}

	complete := Commission{
		Title:        strPtr("Title"),
		Description:  strPtr("Description"),
		DateReceived: &now,
		Images:       []Image{primary},
		Thumbnail:    &primary,
	}
	assert.True(t, complete.IsComplete())

	noImages := complete
	noImages.Images = nil
	assert.False(t, noImages.IsComplete())

	mismatched := complete
	mismatched.Thumbnail = &Image{Name: "other"}
	assert.False(t, mismatched.IsComplete())

	required := Commission{ArtistID: 1}
	assert.False(t, required.IsComplete())
}

func TestCommissionStorageKeys(t *testing.T) {
	thumb := Image{Name: "primary", Alternates: []Alternate{{Key: "K2"}, {Key: "K3"}}}
	c := Commission{
		Invoice:   File{Key: "K1"},
		Images:    []Image{thumb},
		Thumbnail: &thumb,
	}

	assert.Equal(t, []string{"K1", "K2", "K3"}, c.StorageKeys())
}

func TestFileSourceOpen(t *testing.T) {
	_, err := OpenSource(nil)
	assert.ErrorIs(t, err, ErrNoFileSource)

	_, err = PathSource("").Open()
	assert.ErrorIs(t, err, ErrNoFileSource)

	rc, err := BytesSource([]byte("abc")).Open()
	assert.NoError(t, err)
	assert.NoError(t, rc.Close())
}
