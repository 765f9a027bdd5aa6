// Package matrix is a minimal client for the Matrix client-server HTTP API,
// covering exactly the contract spec §4.1/§4.7 needs: "deliver message M to
// room R as user U on host H". It mirrors the teacher's pkg/nats/client.go
// shape (typed Config, injected *log.Logger, pooled http.Client) even though
// the wire protocol underneath is entirely different. It has no
// Stats()-style accessors.
package matrix

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds the homeserver credentials. New copies it by value into the
// Client once, and every delivery through that Client uses the copy.
type Config struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// ID is a deterministic content hash, used to persist matrix configs by
// hash the same way alertcfg.Alert is (spec §4.10: "Persist matrix config
// by hash").
func (c Config) ID() string {
	h := sha256.New()
	fmt.Fprintf(h, "host=%s;user=%s;password=%s", c.Host, c.User, c.Password)
	return hex.EncodeToString(h.Sum(nil))
}

// Client is constructed once by its caller and reused for every delivery:
// it logs in on the first Send and keeps the access token for later sends.
// It is not rebuilt per delivery attempt. The room-alias cache it
// reads/writes through is shared and persistent.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *RoomCache
	logger     *log.Logger

	mu          sync.Mutex
	accessToken string
}

// pooledTransport is shared across every Client so we don't re-dial
// TCP/TLS per delivery attempt.
var pooledTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// New constructs a Client against cfg, backed by the shared RoomCache cache.
func New(cfg Config, cache *RoomCache, logger *log.Logger) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Transport: pooledTransport, Timeout: 30 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

// Send delivers message to room (a room alias, without the leading '#'),
// logging in, resolving the alias, and PUTting the event. It satisfies
// internal/queue.Delivery.
func (c *Client) Send(ctx context.Context, room, message string) error {
	if err := c.login(ctx); err != nil {
		return fmt.Errorf("matrix: login: %w", err)
	}

	roomID, err := c.resolveRoom(ctx, room)
	if err != nil {
		return fmt.Errorf("matrix: resolve room %q: %w", room, err)
	}

	return c.sendEvent(ctx, roomID, message)
}

func (c *Client) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" {
		return nil
	}

	body, _ := json.Marshal(map[string]any{
		"type":     "m.login.password",
		"user":     c.config.User,
		"password": c.config.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Host+"/_matrix/client/r0/login", bytes.NewReader(body))
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
		return fmt.Errorf("login returned %d", resp.StatusCode)
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	c.accessToken = decoded.AccessToken
	return nil
}

func (c *Client) resolveRoom(ctx context.Context, alias string) (string, error) {
	if roomID, ok := c.cache.Lookup(alias); ok {
		c.logger.Printf("matrix: cache hit for room alias %s", alias)
		return roomID, nil
	}

	host := strings.TrimPrefix(strings.TrimPrefix(c.config.Host, "https://"), "http://")
	fullAlias := url.PathEscape(fmt.Sprintf("#%s:%s", alias, host))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/_matrix/client/r0/directory/room/%s", c.config.Host, fullAlias), nil)
	if err != nil {
		return "", err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var decoded struct {
			RoomID string `json:"room_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return "", err
		}
		if err := c.cache.Store(alias, decoded.RoomID); err != nil {
			c.logger.Printf("matrix: failed to persist room cache: %v", err)
		}
		return decoded.RoomID, nil
	}

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Printf("matrix: alias %s not found, creating room", alias)
		return c.createRoom(ctx, alias)
	}

	return "", fmt.Errorf("directory lookup for %s returned %d", alias, resp.StatusCode)
}

// createRoom is the fallback when alias resolution 404s: create the room
// with the alias as both local alias and name, federation disabled, same
// as the original's client.room_create(alias=alias, name=alias,
// topic='log', federate=False).
func (c *Client) createRoom(ctx context.Context, alias string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"room_alias_name": alias,
		"name":            alias,
		"topic":           "log",
		"creation_content": map[string]any{
			"m.federate": false,
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Host+"/_matrix/client/r0/createRoom", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("createRoom for %s returned %d", alias, resp.StatusCode)
	}

	var decoded struct {
		RoomID string `json:"room_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if err := c.cache.Store(alias, decoded.RoomID); err != nil {
		c.logger.Printf("matrix: failed to persist room cache: %v", err)
	}
	return decoded.RoomID, nil
}

func (c *Client) sendEvent(ctx context.Context, roomID, message string) error {
	txnID := uuid.NewString()
	body, _ := json.Marshal(map[string]any{
		"msgtype": "m.text",
		"body":    message,
	})

	path := fmt.Sprintf("%s/_matrix/client/r0/rooms/%s/send/m.room.message/%s",
		c.config.Host, url.PathEscape(roomID), txnID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
