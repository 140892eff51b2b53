package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is a JSON-RPC 2.0 client over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a client for the given /rpc endpoint URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type clientResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Call invokes method with params and unmarshals the result into result when
// it is non-nil.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  mustRaw(params),
	})
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc endpoint returned status %d", resp.StatusCode)
	}

	var decoded clientResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("rpc %s failed: %d %s", method, decoded.Error.Code, decoded.Error.Message)
	}
	if result != nil && len(decoded.Result) > 0 {
		return json.Unmarshal(decoded.Result, result)
	}
	return nil
}

// CreateUserChannel asks the channels service to provision a channel for a
// newly created user.
func (c *Client) CreateUserChannel(ctx context.Context, id, name string) error {
	params := []map[string]string{{"id": id, "name": name}}
	return c.Call(ctx, "createUserProfile", params, nil)
}

func mustRaw(params any) json.RawMessage {
	if params == nil {
		return json.RawMessage("[]")
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return json.RawMessage("[]")
	}
	return raw
}
