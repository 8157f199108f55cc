// Package osc sends remote triggers to the lighting software over OSC.
package osc

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	gosc "github.com/hypebeast/go-osc/osc"
)

const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 7700
	DefaultPrefix = "/QlcPlus"
)

// Client is a fire-and-forget OSC sender.
type Client struct {
	Prefix string
	Log    *log.Logger

	client *gosc.Client
}

func NewClient(host string, port int, prefix string, logger *log.Logger) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{
		Prefix: prefix,
		Log:    logger,
		client: gosc.NewClient(host, port),
	}
}

// Address returns the OSC address for a remote code.
func (c *Client) Address(code string) string {
	return strings.TrimSuffix(c.Prefix, "/") + "/" + strings.TrimPrefix(code, "/")
}

// Trigger sends value 1 to the address belonging to code.
func (c *Client) Trigger(code string) error {
	return c.Send(c.Address(code), 1)
}

// Send delivers a single int32 argument to address.
func (c *Client) Send(address string, value int32) error {
	msg := gosc.NewMessage(address)
	msg.Append(value)
	if err := c.client.Send(msg); err != nil {
		return fmt.Errorf("osc send %s: %w", address, err)
	}
	c.Log.Debug("sent", "address", address, "value", value)
	return nil
}
