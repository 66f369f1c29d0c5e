package chat

import "fmt"

// User-facing texts.
const (
	msgPartnerFound    = "✅ Partner found! Say hi. Use /stop to end the chat."
	msgSearching       = "🔍 Searching for a partner..."
	msgStillSearching  = "⏳ Still searching for a partner. Use /stop to cancel."
	msgAlreadyChatting = "💬 You are already in a chat. Use /stop to end it."
	msgPartnerLeft     = "❌ Your partner ended the chat. Use /chat to find a new one."
	msgChatEnded       = "👋 Chat ended. Use /chat to find a new partner."

	msgNotPaired        = "⚠️ Start a chat with /chat first"
	msgUnsupported      = "⚠️ This type of message can't be sent"
	msgDeliveryFailed   = "❌ Failed to send message"
	msgNoReplyTarget    = "⚠️ Reply to a message to report it!"
	msgUnknownMessage   = "❌ Message not found in history"
	msgReportFailed     = "❌ Failed to send report"
	msgReportSent       = "✅ Report sent to admin!"
	msgInternalError    = "⚠️ Something went wrong. Please try /stop and /chat again."
	mediaContentMarker  = "MEDIA CONTENT"
	defaultAnonPrefix   = "👤 Anonymous: "
	noUsernamePlacehold = "no username"
)

func welcomeText(firstName string) string {
	return fmt.Sprintf("👋 Welcome %s!\n\n"+
		"📌 Commands:\n"+
		"/start - Show menu\n"+
		"/stop - End chat\n"+
		"/chat - Find partner\n"+
		"/report - Report message (reply to message)", firstName)
}

func newUserNotice(u User) string {
	username := u.Username
	if username == "" {
		username = noUsernamePlacehold
	} else {
		username = "@" + username
	}
	return fmt.Sprintf("🚀 New user started bot: %d (%s)", u.ID, username)
}
