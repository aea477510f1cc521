package domain_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/solana-twitter/internal/domain"
)

func TestLayoutConstants(t *testing.T) {
	assert.Equal(t, 1376, domain.TweetSpace)
	assert.Equal(t, 8, domain.AuthorOffset)
	assert.Equal(t, 40, domain.TimestampOffset)
	assert.Equal(t, 48, domain.TopicPrefixOffset)
	assert.Equal(t, 52, domain.TopicOffset)
	assert.Equal(t, 252, domain.ContentPrefixOffset)
	assert.Equal(t, 256, domain.ContentOffset)
	assert.Equal(t, domain.TweetSpace, domain.ContentOffset+domain.MaxContentLength)
}

func TestAccountDiscriminator(t *testing.T) {
	// sha256("account:Tweet")[:8]
	assert.Equal(t, [8]byte{0xe5, 0x0d, 0x6e, 0x3a, 0x76, 0x06, 0x14, 0x4f}, domain.TweetDiscriminator)
	assert.NotEqual(t, domain.TweetDiscriminator, domain.AccountDiscriminator("Other"))
}

// account builds a full account the way the storage layer does: the
// discriminator followed by the encoded body.
func account(t *testing.T, tweet domain.Tweet) []byte {
	t.Helper()
	body, err := tweet.MarshalBinary()
	require.NoError(t, err)
	return append(domain.TweetDiscriminator[:], body...)
}

func TestMarshalBinaryFixedLayout(t *testing.T) {
	tweet := domain.Tweet{
		Author:    testAuthor,
		Timestamp: -42,
		Topic:     "crypto",
		Content:   "GM GM GM",
	}

	data := account(t, tweet)
	require.Len(t, data, domain.TweetSpace)

	assert.Equal(t, testAuthor[:], data[domain.AuthorOffset:domain.AuthorOffset+32])
	assert.Equal(t, int64(-42), int64(binary.LittleEndian.Uint64(data[domain.TimestampOffset:])))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[domain.TopicPrefixOffset:]))
	assert.Equal(t, "crypto", string(data[domain.TopicOffset:domain.TopicOffset+6]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(data[domain.ContentPrefixOffset:]))
	assert.Equal(t, "GM GM GM", string(data[domain.ContentOffset:domain.ContentOffset+8]))

	// unused capacity stays zero
	for _, b := range data[domain.TopicOffset+6 : domain.ContentPrefixOffset] {
		require.Zero(t, b)
	}
	for _, b := range data[domain.ContentOffset+8:] {
		require.Zero(t, b)
	}
}

func TestDecodeTweet(t *testing.T) {
	tests := []struct {
		name  string
		tweet domain.Tweet
	}{
		{name: "ascii", tweet: domain.Tweet{Author: testAuthor, Timestamp: 1650000000, Topic: "ay papi", Content: "GM GM GM GM GM GM"}},
		{name: "empty strings", tweet: domain.Tweet{Author: testAuthor}},
		{name: "worst case encoding", tweet: domain.Tweet{
			Author:    testAuthor,
			Timestamp: 1,
			Topic:     strings.Repeat("😀", domain.MaxTopicChars),
			Content:   strings.Repeat("𝄞", domain.MaxContentChars),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.DecodeTweet(account(t, tt.tweet))
			require.NoError(t, err)
			assert.Equal(t, tt.tweet, got)
		})
	}
}

func TestDecodeTweetRejects(t *testing.T) {
	valid := account(t, domain.Tweet{Author: testAuthor, Topic: "t", Content: "c"})

	wrongDisc := append([]byte(nil), valid...)
	wrongDisc[0] ^= 0xff

	longPrefix := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(longPrefix[domain.TopicPrefixOffset:], domain.MaxTopicLength+1)

	badUTF8 := append([]byte(nil), valid...)
	badUTF8[domain.ContentOffset] = 0xff

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short", data: valid[:domain.TweetSpace-1]},
		{name: "wrong discriminator", data: wrongDisc},
		{name: "length prefix beyond capacity", data: longPrefix},
		{name: "invalid utf-8", data: badUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.DecodeTweet(tt.data)
			assert.ErrorIs(t, err, domain.ErrAccountMismatch)
		})
	}
}

func TestMarshalBinaryCapacity(t *testing.T) {
	_, err := domain.Tweet{Topic: strings.Repeat("a", domain.MaxTopicLength+1)}.MarshalBinary()
	assert.Error(t, err)

	_, err = domain.Tweet{Content: strings.Repeat("a", domain.MaxContentLength+1)}.MarshalBinary()
	assert.Error(t, err)
}

func TestRentMinimumBalance(t *testing.T) {
	rent := domain.DefaultRent()
	assert.Equal(t, uint64(890880), rent.MinimumBalance(0))
	assert.Equal(t, uint64((128+1376)*3480*2), rent.MinimumBalance(domain.TweetSpace))
}
