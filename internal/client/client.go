package client

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mr-tron/base58"

	"github.com/blackmichael/solana-twitter/internal/api"
	"github.com/blackmichael/solana-twitter/internal/domain"
)

const defaultEndpoint = "http://localhost:8899"

// Client is a minimal client for the tweet program's HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new API client. If endpoint is empty, it defaults to
// http://localhost:8899.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StreamURL returns the websocket URL of the tweet stream.
func (c *Client) StreamURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.JoinPath("/v1/stream").String(), nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   api.Error
}

func (e *APIError) Error() string {
	if e.Body.Code != 0 {
		return fmt.Sprintf("API error (status %d): %s (code %d): %s", e.Status, e.Body.Error, e.Body.Code, e.Body.Message)
	}
	return fmt.Sprintf("API error (status %d): %s: %s", e.Status, e.Body.Error, e.Body.Message)
}

// SendTweet signs a send_tweet instruction with the author's key and submits
// it in its binary encoding. The tweet is stored at address.
func (c *Client) SendTweet(ctx context.Context, author ed25519.PrivateKey, address domain.Identity, topic, content string) (*api.Tweet, error) {
	authorID, err := domain.IdentityFromPublicKey(author.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	signed, err := domain.SignSendTweet(domain.SendTweetInstruction{
		Tweet:   address,
		Author:  authorID,
		Topic:   topic,
		Content: content,
	}, author)
	if err != nil {
		return nil, fmt.Errorf("sign instruction: %w", err)
	}
	encoded, err := signed.Instruction.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode instruction: %w", err)
	}

	body := api.SendTweetRequest{
		Instruction: base58.Encode(encoded),
		Signature:   base58.Encode(signed.Signature),
	}

	var resp api.Tweet
	if err := c.do(ctx, http.MethodPost, "/v1/tweets", body, &resp); err != nil {
		return nil, fmt.Errorf("send tweet: %w", err)
	}
	return &resp, nil
}

// GetTweet fetches the tweet stored at address.
func (c *Client) GetTweet(ctx context.Context, address domain.Identity) (*api.Tweet, error) {
	var resp api.Tweet
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+address.String(), nil, &resp); err != nil {
		return nil, fmt.Errorf("get tweet: %w", err)
	}
	return &resp, nil
}

// Airdrop requests test lamports for id and returns the new balance.
func (c *Client) Airdrop(ctx context.Context, id domain.Identity, lamports uint64) (uint64, error) {
	body := api.AirdropRequest{Identity: id.String(), Lamports: lamports}

	var resp api.Balance
	if err := c.do(ctx, http.MethodPost, "/v1/airdrop", body, &resp); err != nil {
		return 0, fmt.Errorf("airdrop: %w", err)
	}
	return resp.Lamports, nil
}

// Balance returns the spendable lamports of id.
func (c *Client) Balance(ctx context.Context, id domain.Identity) (uint64, error) {
	var resp api.Balance
	if err := c.do(ctx, http.MethodGet, "/v1/balances/"+id.String(), nil, &resp); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return resp.Lamports, nil
}

// Program describes the program served at the endpoint.
func (c *Client) Program(ctx context.Context) (*api.Program, error) {
	var resp api.Program
	if err := c.do(ctx, http.MethodGet, "/v1/program", nil, &resp); err != nil {
		return nil, fmt.Errorf("describe program: %w", err)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Body); err != nil {
			apiErr.Body.Message = string(respBody)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
