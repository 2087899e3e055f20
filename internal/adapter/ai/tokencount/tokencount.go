// Package tokencount provides token counting for the judge prompt budget.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken library, so the budget
// check approximates what the provider will actually bill and refuse.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a token counter instance.
func NewCounter() *Counter { return &Counter{} }

// Count returns the token count of text under the cl100k_base encoding, the
// encoding shared by the chat models this engine targets. If the encoding
// cannot be loaded it falls back to a bytes/4 estimate rather than failing
// the scoring call.
func (c *Counter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
