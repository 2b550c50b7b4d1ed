package services

import "sort"

// maxVideoOptions bounds the quality menu so it stays clickable on small
// screens.
const maxVideoOptions = 5

// MenuOption is one entry of the quality-selection menu.
type MenuOption struct {
	Kind   Kind
	Height int // video only
}

// MenuOptions builds the selectable options for probed media: a single audio
// entry first, then the distinct video heights in descending order, capped
// at maxVideoOptions. Media without any video stream still gets the audio
// entry, so the menu is never empty.
func MenuOptions(info *MediaInfo) []MenuOption {
	options := []MenuOption{{Kind: KindAudio}}

	heights := make([]int, 0, len(info.Formats))
	seen := make(map[int]bool)
	for _, f := range info.Formats {
		if f.Height <= 0 || seen[f.Height] {
			continue
		}
		seen[f.Height] = true
		heights = append(heights, f.Height)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	if len(heights) > maxVideoOptions {
		heights = heights[:maxVideoOptions]
	}
	for _, h := range heights {
		options = append(options, MenuOption{Kind: KindVideo, Height: h})
	}

	return options
}
