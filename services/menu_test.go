package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func infoWithHeights(heights ...int) *MediaInfo {
	info := &MediaInfo{ID: "abc123", Title: "clip"}
	for _, h := range heights {
		info.Formats = append(info.Formats, FormatInfo{Height: h})
	}
	return info
}

func videoHeights(options []MenuOption) []int {
	var heights []int
	for _, o := range options {
		if o.Kind == KindVideo {
			heights = append(heights, o.Height)
		}
	}
	return heights
}

func TestMenuOptionsDeduplicatesAndSortsDescending(t *testing.T) {
	options := MenuOptions(infoWithHeights(144, 240, 240, 480, 1080, 1080, 2160))

	require.NotEmpty(t, options)
	assert.Equal(t, KindAudio, options[0].Kind, "audio option always comes first")
	assert.Equal(t, []int{2160, 1080, 480, 240, 144}, videoHeights(options))
}

func TestMenuOptionsCapsVideoEntries(t *testing.T) {
	options := MenuOptions(infoWithHeights(144, 240, 360, 480, 720, 1080, 1440, 2160))

	assert.Equal(t, []int{2160, 1440, 1080, 720, 480}, videoHeights(options))
	assert.Len(t, options, 1+maxVideoOptions)
}

func TestMenuOptionsAudioOnlyWhenNoResolutions(t *testing.T) {
	tests := []struct {
		name string
		info *MediaInfo
	}{
		{"no formats at all", &MediaInfo{ID: "abc123"}},
		{"formats without a height", &MediaInfo{
			ID: "abc123",
			Formats: []FormatInfo{
				{ID: "140", Ext: "m4a"},
				{ID: "251", Ext: "webm"},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := MenuOptions(tt.info)
			require.Len(t, options, 1, "menu is never empty and never has video entries here")
			assert.Equal(t, KindAudio, options[0].Kind)
		})
	}
}
