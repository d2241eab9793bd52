package model

// ChatMessage is one entry in the global, append-only chat log.
//
// TimeStamp is a pre-formatted display string ("[YYYY-MM-DD HH-MM-SS]"), not
// a time.Time: messages are ordered by insertion, never re-sorted by time,
// so the timestamp exists purely for display.
type ChatMessage struct {
	ID        string `json:"id"`
	TimeStamp string `json:"timeStamp"`
	UserName  string `json:"userName"`
	Message   string `json:"message"`
}
