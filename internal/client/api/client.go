package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
)

// Client speaks GraphQL over HTTP POST. Transport failures and GraphQL-level
// errors are kept apart: the former surface as EXTERNAL domain errors, the
// latter carry whatever category the server attached.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []responseError `json:"errors"`
}

type responseError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

// Do runs one GraphQL operation and decodes the data payload into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return commonerrors.ErrNetworkFailure.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return commonerrors.ErrNetworkFailure.WithCause(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return commonerrors.ErrNetworkFailure.WithCause(err)
	}

	if len(decoded.Errors) > 0 {
		return toDomainError(decoded.Errors[0])
	}

	if out != nil && len(decoded.Data) > 0 {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}

func toDomainError(e responseError) error {
	code := "UNKNOWN"
	category := commonerrors.CategoryInternal

	if e.Extensions != nil {
		if c, ok := e.Extensions["code"].(string); ok && c != "" {
			code = c
		}
		if c, ok := e.Extensions["category"].(string); ok && c != "" {
			category = commonerrors.ErrorCategory(c)
		}
	}

	return commonerrors.NewDomainError(code, category, e.Message)
}
