package inventory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/config"
)

// wsClient speaks the controller's JSON-RPC protocol over a websocket.
// Requests are serialized; the controller answers each frame with the same
// request id.
type wsClient struct {
	conn *websocket.Conn

	mu     sync.Mutex
	nextID uint64
}

type rpcRequest struct {
	RequestID uint64 `json:"request-id"`
	Type      string `json:"type"`
	Request   string `json:"request"`
	Params    any    `json:"params,omitempty"`
}

type rpcResponse struct {
	RequestID uint64          `json:"request-id"`
	Error     string          `json:"error,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
}

// Dial connects to the controller API endpoint, verifies the server against
// the configured CA certificate and logs in. It satisfies DialFunc.
func Dial(ctx context.Context, cfg config.Controller) (Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CACertFile != "" {
		pem, err := os.ReadFile(cfg.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("reading controller CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACertFile)
		}
		tlsConfig.RootCAs = pool
	}

	u := url.URL{Scheme: "wss", Host: cfg.Endpoint, Path: "/api"}
	dialer := websocket.Dialer{TLSClientConfig: tlsConfig}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to controller %s: %w", cfg.Endpoint, err)
	}

	c := &wsClient{conn: conn}
	if err := c.login(ctx, cfg.Username, cfg.Password); err != nil {
		_ = conn.Close()
		return nil, err
	}
	zap.S().Debugw("connected to controller", "endpoint", cfg.Endpoint, "user", cfg.Username)
	return c, nil
}

func (c *wsClient) login(ctx context.Context, username, password string) error {
	params := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	if err := c.call(ctx, "Admin", "Login", params, nil); err != nil {
		return fmt.Errorf("controller login failed: %w", err)
	}
	return nil
}

func (c *wsClient) ListModels(ctx context.Context) ([]string, error) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := c.call(ctx, "ModelManager", "ListModels", nil, &result); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *wsClient) Model(ctx context.Context, name string) (*Model, error) {
	params := struct {
		Model string `json:"model"`
	}{name}
	var result struct {
		Units []struct {
			Name          string `json:"name"`
			Application   string `json:"application"`
			MachineID     string `json:"machine-id"`
			PublicAddress string `json:"public-address"`
		} `json:"units"`
		Machines []struct {
			ID string `json:"id"`
		} `json:"machines"`
	}
	if err := c.call(ctx, "Client", "ModelInventory", params, &result); err != nil {
		return nil, err
	}

	model := &Model{
		Name:     name,
		Units:    make(map[string]Unit, len(result.Units)),
		Machines: sets.New[string](),
	}
	for _, u := range result.Units {
		model.Units[u.Name] = Unit{
			Name:          u.Name,
			Application:   u.Application,
			MachineID:     u.MachineID,
			PublicAddress: u.PublicAddress,
		}
	}
	for _, m := range result.Machines {
		model.Machines.Insert(m.ID)
	}
	return model, nil
}

// call performs one request/response round trip. The websocket is not safe
// for concurrent writes, so calls are serialized.
func (c *wsClient) call(ctx context.Context, facade, request string, params, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := rpcRequest{
		RequestID: c.nextID,
		Type:      facade,
		Request:   request,
		Params:    params,
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		_ = c.conn.SetWriteDeadline(deadline)
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%s.%s: %w", facade, request, err)
	}

	for {
		var resp rpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("%s.%s: %w", facade, request, err)
		}
		if resp.RequestID != req.RequestID {
			// Stale frame from an earlier, abandoned call.
			continue
		}
		if resp.Error != "" {
			return fmt.Errorf("%s.%s: %s", facade, request, resp.Error)
		}
		if result != nil && len(resp.Response) > 0 {
			if err := json.Unmarshal(resp.Response, result); err != nil {
				return fmt.Errorf("%s.%s: decoding response: %w", facade, request, err)
			}
		}
		return nil
	}
}

func (c *wsClient) Close() error {
	return c.conn.Close()
}
