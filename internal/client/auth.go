package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkordes/boutique/internal/domain"
)

// Login exchanges admin credentials for a session and keeps its token for
// later requests.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	in := map[string]string{"username": username, "password": password}
	var sess domain.Session
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, in, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("client.Client.Login: %w", err)
	}
	c.SetToken(sess.Token)
	return sess, nil
}

// Logout forgets the session token. Tokens are stateless, so there is
// nothing to revoke server-side.
func (c *Client) Logout() {
	c.SetToken("")
}
