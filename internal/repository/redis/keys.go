package redis

import "fmt"

const ns = "clubdoor:v1"

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

func KeyEventAvailability(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:availability", ns, eventID)
}

func KeyLeaderboard(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:leaderboard", ns, eventID)
}

func KeyIdemTicket(eventID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:tickets:%d:%s", ns, eventID, idemKey)
}

func ChannelAdmissions() string {
	return ns + ":admissions:changed"
}
