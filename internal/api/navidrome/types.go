package navidrome

import (
	subsonic "github.com/delucks/go-subsonic"
)

// Client holds a Navidrome (Subsonic API) connection.
type Client struct {
	URL      string
	Username string
	Password string

	client subsonic.Client
	salt   string
	token  string
}

// NewClient creates an unauthenticated Navidrome client.
func NewClient(url, username, password string) *Client {
	return &Client{
		URL:      url,
		Username: username,
		Password: password,
	}
}
