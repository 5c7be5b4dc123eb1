package redis

import (
	"github.com/pior/redis/resp"
)

// UnexpectedReplyError is returned by typed Client methods when the server
// answers with a reply of the wrong kind. The connection stays in sync: the
// reply was fully consumed.
type UnexpectedReplyError struct {
	Command string     // Command name, e.g. "GET"
	Reply   resp.Value // The reply as received
}

func (e *UnexpectedReplyError) Error() string {
	return "redis: unexpected reply to " + e.Command + ": " + e.Reply.String()
}

// ShouldCloseConnection returns false - the reply was a valid frame
func (e *UnexpectedReplyError) ShouldCloseConnection() bool {
	return false
}

func unexpectedReply(cmd *resp.Command, reply resp.Value) error {
	return &UnexpectedReplyError{Command: cmd.Name, Reply: reply}
}
