package presence

import (
	"fmt"
	"strings"
)

// RoomURL returns the public page for a live room.
func RoomURL(roomID string) string {
	return "https://live.bilibili.com/" + roomID
}

// RenderOnline builds the metadata text for a room that is streaming.
// headline is the configured announcement line.
func RenderOnline(headline, roomID string, status RoomStatus) string {
	var b strings.Builder
	b.WriteString(headline)
	b.WriteString("\n链接:")
	b.WriteString(RoomURL(roomID))
	fmt.Fprintf(&b, "\n分区:%s", status.AreaName)
	fmt.Fprintf(&b, "\n标题:%s", status.Title)
	fmt.Fprintf(&b, "\n简介:%s", status.Description)
	fmt.Fprintf(&b, "\n热度:%d, 关注:%d", status.Online, status.Attention)
	return b.String()
}

// coverImage picks the keyframe and falls back to the user cover. Empty
// means the notification carries no image.
func coverImage(status RoomStatus) string {
	if status.Keyframe != "" {
		return status.Keyframe
	}
	return status.UserCover
}
