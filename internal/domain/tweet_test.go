package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/solana-twitter/internal/domain"
)

var testAuthor = domain.Identity{1, 2, 3, 4, 5, 6, 7, 8}

func TestCreateRecord(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		content string
		wantErr error
	}{
		{name: "typical tweet", topic: "crypto", content: "GM GM GM GM GM GM"},
		{name: "empty topic", topic: "", content: "GM GM GM GM GM GM"},
		{name: "empty content", topic: "solana", content: ""},
		{name: "topic at limit", topic: strings.Repeat("a", 50), content: "ok"},
		{name: "topic over limit", topic: strings.Repeat("a", 51), content: "ok", wantErr: domain.ErrTopicTooLong},
		{name: "content at limit", topic: "t", content: strings.Repeat("b", 280)},
		{name: "content over limit", topic: "t", content: strings.Repeat("b", 281), wantErr: domain.ErrContentTooLong},
		{name: "topic checked first", topic: strings.Repeat("a", 51), content: strings.Repeat("b", 281), wantErr: domain.ErrTopicTooLong},
		{name: "four byte topic at limit", topic: strings.Repeat("😀", 50), content: "ok"},
		{name: "four byte topic over limit", topic: strings.Repeat("😀", 51), content: "ok", wantErr: domain.ErrTopicTooLong},
		{name: "multibyte content at limit", topic: "t", content: strings.Repeat("é", 280)},
		{name: "invalid utf-8 topic", topic: "bad\xff\xfe", content: "ok", wantErr: domain.ErrInvalidEncoding},
		{name: "invalid utf-8 content", topic: "t", content: "ok\xc3", wantErr: domain.ErrInvalidEncoding},
		{name: "invalid topic checked before long content", topic: "\xff", content: strings.Repeat("b", 281), wantErr: domain.ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tweet, err := domain.CreateRecord(tt.topic, tt.content, testAuthor, 1700000000)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.Tweet{}, tweet)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testAuthor, tweet.Author)
			assert.Equal(t, int64(1700000000), tweet.Timestamp)
			assert.Equal(t, tt.topic, tweet.Topic)
			assert.Equal(t, tt.content, tweet.Content)
		})
	}
}

func TestProgramErrorCodes(t *testing.T) {
	assert.Equal(t, 6000, domain.ErrTopicTooLong.Code)
	assert.Equal(t, 6001, domain.ErrContentTooLong.Code)
	assert.Equal(t, "Max 50 bro", domain.ErrTopicTooLong.Message)
	assert.Equal(t, "Content max 280 bro", domain.ErrContentTooLong.Message)
	assert.NotErrorIs(t, domain.ErrTopicTooLong, domain.ErrContentTooLong)

	pe, ok := domain.AsProgramError(domain.ErrContentTooLong)
	require.True(t, ok)
	assert.Equal(t, "ContentTooLong", pe.Name)

	_, ok = domain.AsProgramError(domain.ErrSlotExists)
	assert.False(t, ok)
}
