package realtime

import "fmt"

// Room naming. Rooms group live connections for fan-out:
// a personal room per user, a broadcast room per chat channel, and a
// deterministic two-party room for private chats.

// UserRoom returns the personal notification room for a user.
func UserRoom(userID string) string {
	return "user_" + userID
}

// ChannelRoom returns the broadcast room for a chat channel.
func ChannelRoom(channel string) string {
	return "channel_" + channel
}

// PrivateRoom returns the room shared by two users. The ids are ordered
// lexicographically so both participants compute the identical name
// regardless of argument order.
func PrivateRoom(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("private_%s_%s", a, b)
}
