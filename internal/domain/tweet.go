package domain

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxTopicChars is the maximum topic length in Unicode code points.
	MaxTopicChars = 50

	// MaxContentChars is the maximum content length in Unicode code points.
	MaxContentChars = 280
)

// Tweet is the record stored in a tweet account. It is written once and
// never modified.
type Tweet struct {
	// Author is the identity that signed and paid for the tweet.
	Author Identity

	// Timestamp is the creation time in unix seconds, taken from the clock.
	Timestamp int64

	// Topic is an optional short tag, at most MaxTopicChars code points.
	Topic string

	// Content is the tweet body, at most MaxContentChars code points.
	Content string
}

// CreateRecord validates topic and content and builds the tweet record for
// author at time now. The topic is checked before the content, and lengths
// are measured in code points rather than bytes. Both must be valid UTF-8.
func CreateRecord(topic, content string, author Identity, now int64) (Tweet, error) {
	if !utf8.ValidString(topic) {
		return Tweet{}, fmt.Errorf("%w: topic", ErrInvalidEncoding)
	}
	if utf8.RuneCountInString(topic) > MaxTopicChars {
		return Tweet{}, ErrTopicTooLong
	}
	if !utf8.ValidString(content) {
		return Tweet{}, fmt.Errorf("%w: content", ErrInvalidEncoding)
	}
	if utf8.RuneCountInString(content) > MaxContentChars {
		return Tweet{}, ErrContentTooLong
	}

	return Tweet{
		Author:    author,
		Timestamp: now,
		Topic:     topic,
		Content:   content,
	}, nil
}
