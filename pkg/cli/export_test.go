package cli

var (
	CleanSecret = cleanSecret
	ChatTurn    = chatTurn
)
