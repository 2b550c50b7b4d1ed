package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"mediaBot/services"
)

// Selection is the full context a quality button carries. Nothing is kept
// server-side between sending the menu and the click; the payload alone must
// reconstruct the download request.
type Selection struct {
	Kind    services.Kind
	VideoID string
	Height  int // video only
}

// Encode renders the callback payload: "audio|<id>" or "video|<id>|<height>".
func (s Selection) Encode() string {
	if s.Kind == services.KindVideo {
		return fmt.Sprintf("%s|%s|%d", services.KindVideo, s.VideoID, s.Height)
	}
	return fmt.Sprintf("%s|%s", services.KindAudio, s.VideoID)
}

// ParseSelection is the inverse of Encode.
func ParseSelection(data string) (Selection, error) {
	parts := strings.Split(data, "|")
	if len(parts) < 2 || parts[1] == "" {
		return Selection{}, fmt.Errorf("malformed callback payload %q", data)
	}

	sel := Selection{VideoID: parts[1]}
	switch services.Kind(parts[0]) {
	case services.KindAudio:
		if len(parts) != 2 {
			return Selection{}, fmt.Errorf("malformed audio payload %q", data)
		}
		sel.Kind = services.KindAudio
	case services.KindVideo:
		if len(parts) != 3 {
			return Selection{}, fmt.Errorf("malformed video payload %q", data)
		}
		height, err := strconv.Atoi(parts[2])
		if err != nil || height <= 0 {
			return Selection{}, fmt.Errorf("bad height in payload %q", data)
		}
		sel.Kind = services.KindVideo
		sel.Height = height
	default:
		return Selection{}, fmt.Errorf("unknown payload kind %q", parts[0])
	}

	return sel, nil
}

// Request converts the selection into a download request.
func (s Selection) Request() services.DownloadRequest {
	return services.DownloadRequest{
		Kind:    s.Kind,
		VideoID: s.VideoID,
		Height:  s.Height,
	}
}
