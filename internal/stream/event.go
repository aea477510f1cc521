package stream

import (
	"encoding/json"
	"fmt"

	"github.com/blackmichael/solana-twitter/internal/domain"
)

// KindTweet marks an event carrying a newly created tweet.
const KindTweet = "tweet"

// event is the JSON frame sent to stream subscribers.
type event struct {
	// Seq increases by one for every event the hub publishes.
	Seq   uint64               `json:"seq"`
	Kind  string               `json:"kind"`
	Tweet *domain.TweetCreated `json:"tweet,omitempty"`
}

func parseEvent(data []byte) (*event, error) {
	var e event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.Kind == KindTweet && e.Tweet == nil {
		return nil, fmt.Errorf("tweet event %d has no tweet", e.Seq)
	}
	return &e, nil
}
