package domain

// TweetCreated is emitted once a tweet account has been committed.
type TweetCreated struct {
	Address   Identity `json:"address"`
	Author    Identity `json:"author"`
	Timestamp int64    `json:"timestamp"`
	Topic     string   `json:"topic"`
	Content   string   `json:"content"`
	Lamports  uint64   `json:"lamports"`
}

// CreatedTweet is the result of a successful send_tweet.
type CreatedTweet struct {
	// Address is the account holding the tweet.
	Address Identity

	// Tweet is the stored record.
	Tweet Tweet

	// Lamports is the rent-exempt balance the author paid into the account.
	Lamports uint64
}

func (c *CreatedTweet) event() TweetCreated {
	return TweetCreated{
		Address:   c.Address,
		Author:    c.Tweet.Author,
		Timestamp: c.Tweet.Timestamp,
		Topic:     c.Tweet.Topic,
		Content:   c.Tweet.Content,
		Lamports:  c.Lamports,
	}
}
