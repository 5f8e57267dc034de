package litex

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Client talks to a litex server. Each frame gets exactly one reply, so calls
// are serialized and matched up by statement id.
type Client struct {
	WebSocketConn *websocket.Conn
	URL           string

	mu              sync.Mutex
	nextStatementID int
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	return &Client{
		WebSocketConn: conn,
		URL:           url,
	}, nil
}

func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.WebSocketConn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		return errors.Wrap(err, "sending close")
	}
	return c.WebSocketConn.Close()
}

// Send sends one frame and waits for its reply.
func (c *Client) Send(frame string) (*MessageToClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextStatementID
	c.nextStatementID++
	if err := c.WebSocketConn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		return nil, errors.Wrap(err, "sending frame")
	}
	reply := &ChannelMessage{}
	if err := c.WebSocketConn.ReadJSON(reply); err != nil {
		return nil, errors.Wrap(err, "reading reply")
	}
	if reply.StatementID != id || reply.Message == nil {
		return nil, errors.Errorf("expected reply to statement %d; got %d", id, reply.StatementID)
	}
	return reply.Message, nil
}

// Run sends a program chunk and returns the result of each statement in it.
func (c *Client) Run(program string) ([]*Result, error) {
	msg, err := c.Send(program)
	if err != nil {
		return nil, err
	}
	if msg.ErrorMessage != nil {
		return nil, errors.New(*msg.ErrorMessage)
	}
	if msg.Type != ResultsMessage {
		return nil, errors.Errorf("run result neither error nor results: %s", msg.Type)
	}
	return msg.Results, nil
}

// Command sends a backslash command and returns its ack.
func (c *Client) Command(command string) (string, error) {
	msg, err := c.Send(command)
	if err != nil {
		return "", err
	}
	if msg.ErrorMessage != nil {
		return "", errors.New(*msg.ErrorMessage)
	}
	if msg.AckMessage == nil {
		return "", errors.Errorf("command result neither error nor ack: %s", msg.Type)
	}
	return *msg.AckMessage, nil
}
