package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Account layout sizes. String capacity reserves four bytes per code point so
// that any valid topic or content fits regardless of its encoding.
const (
	DiscriminatorLength = 8
	PublicKeyLength     = IdentitySize
	TimestampLength     = 8
	StringLengthPrefix  = 4
	MaxTopicLength      = MaxTopicChars * 4   // 200 bytes
	MaxContentLength    = MaxContentChars * 4 // 1120 bytes

	// TweetSpace is the fixed size of every tweet account.
	TweetSpace = DiscriminatorLength +
		PublicKeyLength + // author
		TimestampLength + // timestamp
		StringLengthPrefix + MaxTopicLength + // topic
		StringLengthPrefix + MaxContentLength // content
)

// Field offsets within a tweet account.
const (
	AuthorOffset        = DiscriminatorLength
	TimestampOffset     = AuthorOffset + PublicKeyLength
	TopicPrefixOffset   = TimestampOffset + TimestampLength
	TopicOffset         = TopicPrefixOffset + StringLengthPrefix
	ContentPrefixOffset = TopicOffset + MaxTopicLength
	ContentOffset       = ContentPrefixOffset + StringLengthPrefix
)

// TweetDiscriminator tags accounts that hold a Tweet.
var TweetDiscriminator = AccountDiscriminator("Tweet")

// AccountDiscriminator derives the eight byte type tag for an account type,
// the first bytes of sha256("account:<name>").
func AccountDiscriminator(name string) [DiscriminatorLength]byte {
	return hashPrefix("account:" + name)
}

// InstructionDiscriminator derives the eight byte selector for an
// instruction, the first bytes of sha256("global:<name>").
func InstructionDiscriminator(name string) [DiscriminatorLength]byte {
	return hashPrefix("global:" + name)
}

func hashPrefix(preimage string) [DiscriminatorLength]byte {
	var d [DiscriminatorLength]byte
	sum := sha256.Sum256([]byte(preimage))
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// MarshalBinary encodes the tweet into the account body that follows the
// discriminator. The result is always TweetSpace-DiscriminatorLength bytes;
// capacity a string does not use is left zeroed.
func (t Tweet) MarshalBinary() ([]byte, error) {
	if len(t.Topic) > MaxTopicLength {
		return nil, fmt.Errorf("topic is %d bytes, capacity is %d", len(t.Topic), MaxTopicLength)
	}
	if len(t.Content) > MaxContentLength {
		return nil, fmt.Errorf("content is %d bytes, capacity is %d", len(t.Content), MaxContentLength)
	}

	buf := make([]byte, TweetSpace-DiscriminatorLength)
	body := func(offset int) []byte { return buf[offset-DiscriminatorLength:] }

	copy(body(AuthorOffset), t.Author[:])
	binary.LittleEndian.PutUint64(body(TimestampOffset), uint64(t.Timestamp))
	binary.LittleEndian.PutUint32(body(TopicPrefixOffset), uint32(len(t.Topic)))
	copy(body(TopicOffset), t.Topic)
	binary.LittleEndian.PutUint32(body(ContentPrefixOffset), uint32(len(t.Content)))
	copy(body(ContentOffset), t.Content)

	return buf, nil
}

// DecodeTweet decodes a full tweet account, discriminator included.
func DecodeTweet(data []byte) (Tweet, error) {
	if len(data) != TweetSpace {
		return Tweet{}, fmt.Errorf("%w: size %d, want %d", ErrAccountMismatch, len(data), TweetSpace)
	}
	if !bytes.Equal(data[:DiscriminatorLength], TweetDiscriminator[:]) {
		return Tweet{}, fmt.Errorf("%w: unexpected discriminator %x", ErrAccountMismatch, data[:DiscriminatorLength])
	}

	var t Tweet
	copy(t.Author[:], data[AuthorOffset:TimestampOffset])
	t.Timestamp = int64(binary.LittleEndian.Uint64(data[TimestampOffset:]))

	topic, err := readString(data, TopicPrefixOffset, MaxTopicLength)
	if err != nil {
		return Tweet{}, fmt.Errorf("read topic: %w", err)
	}
	content, err := readString(data, ContentPrefixOffset, MaxContentLength)
	if err != nil {
		return Tweet{}, fmt.Errorf("read content: %w", err)
	}
	t.Topic = topic
	t.Content = content

	return t, nil
}

func readString(data []byte, prefixOffset, capacity int) (string, error) {
	n := binary.LittleEndian.Uint32(data[prefixOffset:])
	if n > uint32(capacity) {
		return "", fmt.Errorf("%w: length prefix %d exceeds capacity %d", ErrAccountMismatch, n, capacity)
	}
	start := prefixOffset + StringLengthPrefix
	raw := data[start : start+int(n)]
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: invalid utf-8", ErrAccountMismatch)
	}
	return string(raw), nil
}
