// Package api defines the JSON bodies exchanged between the HTTP server and
// its clients. Identities are base58 strings and signatures are base58
// encoded ed25519 signatures.
package api

// SendTweetRequest is the body of POST /v1/tweets. The instruction is given
// either as Instruction, the base58 of its binary encoding, or as the
// individual fields.
type SendTweetRequest struct {
	Instruction string `json:"instruction,omitempty"`
	Tweet       string `json:"tweet,omitempty"`
	Author      string `json:"author,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Content     string `json:"content,omitempty"`
	Signature   string `json:"signature"`
}

// Tweet is a stored tweet as returned by the API.
type Tweet struct {
	Address   string `json:"address"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
	Topic     string `json:"topic"`
	Content   string `json:"content"`
	Lamports  uint64 `json:"lamports,omitempty"`
}

// AirdropRequest is the body of POST /v1/airdrop.
type AirdropRequest struct {
	Identity string `json:"identity"`
	Lamports uint64 `json:"lamports"`
}

// Balance is returned by POST /v1/airdrop and GET /v1/balances/{identity}.
type Balance struct {
	Identity string `json:"identity"`
	Lamports uint64 `json:"lamports"`
}

// Program describes the tweet program served by this node.
type Program struct {
	ProgramID    string `json:"programId"`
	TweetSpace   int    `json:"tweetSpace"`
	RentLamports uint64 `json:"rentLamports"`
	MaxTopic     int    `json:"maxTopicChars"`
	MaxContent   int    `json:"maxContentChars"`
}

// Error is the body of every non-2xx response. Code is set for program
// errors only.
type Error struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}
