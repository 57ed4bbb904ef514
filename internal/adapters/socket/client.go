package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client connects to the notelink daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Link asks the daemon to resolve title links in text.
func (c *Client) Link(params LinkParams) (*LinkResult, error) {
	var result LinkResult
	if err := c.do(MethodLink, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Match returns every raw title occurrence in text.
func (c *Client) Match(text string) (*MatchResult, error) {
	var result MatchResult
	if err := c.do(MethodMatch, MatchParams{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Titles lists the notes whose titles are linkable.
func (c *Client) Titles() (*TitlesResult, error) {
	var result TitlesResult
	if err := c.do(MethodTitles, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Backlinks lists the notes whose bodies mention the target note's title.
func (c *Client) Backlinks(params BacklinksParams) (*BacklinksResult, error) {
	var result BacklinksResult
	if err := c.do(MethodBacklinks, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload sends a reload request to the daemon with an extended timeout.
func (c *Client) Reload() (*ReloadResult, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: MethodReload,
	}, 60*time.Second)
	if err != nil {
		return nil, err
	}
	var result ReloadResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     "1",
		Method: MethodShutdown,
	})
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) do(method string, params interface{}, result interface{}) error {
	resp, err := c.call(Request{
		ID:     "1",
		Method: method,
		Params: params,
	})
	if err != nil {
		return err
	}
	return decodeResult(resp, result)
}

func decodeResult(resp *Response, result interface{}) error {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
