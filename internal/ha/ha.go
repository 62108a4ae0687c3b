// Package ha seeds subscription values from the Home Assistant REST API
// at startup, so retained-less topics show data before their first MQTT
// message arrives.
package ha

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Client fetches entity states from one Home Assistant instance.
type Client struct {
	url   string
	token string

	http *http.Client
	now  func() time.Time
}

// NewClient returns a client for the configured endpoint.
func NewClient(cfg config.HA) *Client {
	return &Client{
		url:   strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http:  &http.Client{Timeout: 5 * time.Second},
		now:   time.Now,
	}
}

// Prefetch writes the current state of every subscription that names an
// entity into the store. Failures are logged and skipped, never fatal:
// a subscription that cannot be prefetched stays unset until its first
// MQTT message.
func (c *Client) Prefetch(subs []config.Subscription, store *state.Store) {
	n := 0
	for _, sub := range subs {
		if sub.EntityID != "" {
			n++
		}
	}
	if n == 0 {
		return
	}

	log.Printf("ha: prefetching %d entity state(s) from %s", n, c.url)
	for _, sub := range subs {
		if sub.EntityID == "" {
			continue
		}
		raw, err := c.fetchState(sub.EntityID)
		if err != nil {
			log.Printf("ha: prefetch %s: %v", sub.EntityID, err)
			continue
		}
		// HA reports these pseudo-states for entities with no data yet.
		if raw == "unknown" || raw == "unavailable" {
			continue
		}
		store.SetSubscription(sub.ID, state.SubscriptionValue{
			Value: state.Parse(raw),
			At:    c.now(),
		})
		log.Printf("ha: prefetch %s -> %s = %q", sub.EntityID, sub.ID, raw)
	}
}

type entityState struct {
	State string `json:"state"`
}

func (c *Client) fetchState(entityID string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.url+"/api/states/"+entityID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var es entityState
	if err := json.NewDecoder(resp.Body).Decode(&es); err != nil {
		return "", fmt.Errorf("decode state: %w", err)
	}
	return es.State, nil
}
