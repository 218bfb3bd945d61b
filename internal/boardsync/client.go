package boardsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the board's query API: a single endpoint that takes a
// JSON body with a query string and a bearer token.
type Client struct {
	URL   string
	Token string
	HTTP  *http.Client
}

func NewClient(url, token string) *Client {
	return &Client{
		URL:   url,
		Token: token,
		HTTP:  &http.Client{Timeout: 15 * time.Second},
	}
}

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Columns lists the columns of a board.
func (c *Client) Columns(ctx context.Context, boardID string) ([]Column, error) {
	query := fmt.Sprintf(`query { boards (ids: [%s]) { columns { id title type } } }`, boardID)
	var resp struct {
		Data struct {
			Boards []struct {
				Columns []Column `json:"columns"`
			} `json:"boards"`
		} `json:"data"`
	}
	if err := c.do(ctx, map[string]any{"query": query}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.Boards) == 0 {
		return nil, fmt.Errorf("boardsync: board %s not found", boardID)
	}
	return resp.Data.Boards[0].Columns, nil
}

// CreateItem adds one item to the board. columnValues maps column id to
// the column's typed value.
func (c *Client) CreateItem(ctx context.Context, boardID, groupID, name string, columnValues map[string]any) (string, error) {
	vals, err := json.Marshal(columnValues)
	if err != nil {
		return "", fmt.Errorf("boardsync: encode column values: %w", err)
	}
	query := `mutation ($board: ID!, $group: String, $name: String!, $values: JSON) {
		create_item (board_id: $board, group_id: $group, item_name: $name, column_values: $values) { id }
	}`
	body := map[string]any{
		"query": query,
		"variables": map[string]any{
			"board":  boardID,
			"group":  groupID,
			"name":   name,
			"values": string(vals),
		},
	}
	var resp struct {
		Data struct {
			CreateItem struct {
				ID string `json:"id"`
			} `json:"create_item"`
		} `json:"data"`
	}
	if err := c.do(ctx, body, &resp); err != nil {
		return "", err
	}
	return resp.Data.CreateItem.ID, nil
}

func (c *Client) do(ctx context.Context, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("boardsync: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("boardsync: request: %w", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("boardsync: read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("boardsync: board API returned %d: %s", res.StatusCode, truncate(data, 200))
	}

	// The API reports failures in-band alongside a 200.
	var probe struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		if probe.ErrorMessage != "" {
			return fmt.Errorf("boardsync: board API error: %s", probe.ErrorMessage)
		}
		if len(probe.Errors) > 0 {
			return fmt.Errorf("boardsync: board API error: %s", probe.Errors[0].Message)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("boardsync: decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
