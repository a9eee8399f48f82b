package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"twinhost/pkg/twin"
)

const defaultTimeout = 30 * time.Second

// maxAudioBytes caps voice clip downloads so a misbehaving remote cannot
// exhaust memory.
const maxAudioBytes = 10 << 20

// Client is the single network boundary to the twin platform: profile export
// lookups, chat relay and voice clip downloads. One attempt per call, no
// retries; a failed call is terminal for that command.
type Client struct {
	client *http.Client
}

type profileResponse struct {
	TwinID            string `json:"twinId"`
	DisplayName       string `json:"displayName"`
	APIEndpoint       string `json:"apiEndpoint"`
	MinecraftUsername string `json:"minecraftUsername,omitempty"`
	MinecraftSkinURL  string `json:"minecraftSkinUrl,omitempty"`
}

type chatRequest struct {
	TwinID  string `json:"twinId"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// APIError captures non-2xx responses to allow inspection of the status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Body)
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchProfile retrieves a twin profile from the export endpoint. Transport
// failures and non-2xx statuses surface as NetworkError, undecodable or
// incomplete bodies as FormatError.
func (c *Client) FetchProfile(ctx context.Context, url string) (*twin.Profile, error) {
	const op = "fetch profile"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}

	var pr profileResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, &twin.FormatError{Op: op, Reason: err.Error()}
	}
	if pr.TwinID == "" || pr.DisplayName == "" || pr.APIEndpoint == "" {
		return nil, &twin.FormatError{Op: op, Reason: "missing twinId, displayName or apiEndpoint"}
	}

	return &twin.Profile{
		Name:              twin.DeriveName(pr.DisplayName, pr.MinecraftUsername),
		DisplayName:       pr.DisplayName,
		TwinID:            pr.TwinID,
		APIEndpoint:       pr.APIEndpoint,
		MinecraftUsername: pr.MinecraftUsername,
	}, nil
}

// SendMessage relays one chat message to a twin's remote endpoint and returns
// the reply. Prior exchanges are the remote's business; nothing is kept here.
func (c *Client) SendMessage(ctx context.Context, endpoint, twinID, text string) (*twin.Reply, error) {
	const op = "send message"

	payload, err := json.Marshal(chatRequest{TwinID: twinID, Message: text})
	if err != nil {
		return nil, &twin.FormatError{Op: op, Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, &twin.FormatError{Op: op, Reason: err.Error()}
	}
	if cr.Response == "" {
		return nil, &twin.FormatError{Op: op, Reason: "missing response text"}
	}

	return &twin.Reply{Text: cr.Response, AudioLocator: cr.AudioURL}, nil
}

// FetchAudio downloads a resolved voice clip for playback.
func (c *Client) FetchAudio(ctx context.Context, url string) ([]byte, error) {
	const op = "fetch audio"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &twin.NetworkError{Op: op, Err: &APIError{StatusCode: resp.StatusCode}}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, &twin.NetworkError{Op: op, Err: err}
	}
	return data, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
