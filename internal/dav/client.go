// Package dav translates tasks and contacts into iCalendar and vCard
// payloads and mirrors them to a WebDAV calendar/address-book server.
//
// Resources are addressed by UID:
//
//	<base>/calendars/<collection>/default/<uid>.ics
//	<base>/addressbooks/<collection>/default/<uid>.vcf
//
// Every call is a single PUT or DELETE with fixed basic-auth
// credentials; there are no retries at this layer. Reconciliation of
// partial failures is the outbox sweeper's job.
package dav

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

const (
	contentTypeCalendar = "text/calendar"
	contentTypeVCard    = "text/vcard"
)

// RemoteError carries the remote server's response for a rejected call.
// The body is surfaced to callers as diagnostic text.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// NotFound reports whether the remote resource was absent. A DELETE of
// an already-missing resource is treated as success by the sweeper.
func (e *RemoteError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// basicAuthTransport adds the credential pair to every request. The
// credentials can be swapped at runtime when the config file changes.
type basicAuthTransport struct {
	mu       sync.RWMutex
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.RLock()
	username, password := t.username, t.password
	t.mu.RUnlock()
	req.SetBasicAuth(username, password)
	req.Header.Set("User-Agent", "taskify/1.0")
	return t.next.RoundTrip(req)
}

func (t *basicAuthTransport) setCredentials(username, password string) {
	t.mu.Lock()
	t.username = username
	t.password = password
	t.mu.Unlock()
}

// Config holds the remote server settings.
type Config struct {
	// BaseURL is the DAV root, e.g. https://dav.example.net/dav.php
	BaseURL  string
	Username string
	Password string

	// CalendarCollection and AddressBookCollection name the collections
	// under the calendars/ and addressbooks/ roots.
	CalendarCollection    string
	AddressBookCollection string

	// Timeout bounds each remote call. Zero means 15 seconds.
	Timeout time.Duration

	// Logger for sync activity. Nil means a stderr default.
	Logger *log.Logger
}

// Client performs the remote half of the dual write.
type Client struct {
	httpClient *http.Client
	transport  *basicAuthTransport
	baseURL    string
	config     Config
	logger     *log.Logger
}

// NewClient creates a DAV client with basic-auth transport.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dav base URL is required")
	}
	if cfg.CalendarCollection == "" || cfg.AddressBookCollection == "" {
		return nil, fmt.Errorf("dav collection names are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[dav] ", log.LstdFlags)
	}

	transport := &basicAuthTransport{
		username: cfg.Username,
		password: cfg.Password,
		next:     http.DefaultTransport,
	}
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		config:    cfg,
		logger:    logger,
	}, nil
}

// SetCredentials replaces the basic-auth pair used for subsequent
// requests. Called on config reload so rotated DAV credentials take
// effect without a restart.
func (c *Client) SetCredentials(username, password string) {
	c.transport.setCredentials(username, password)
	c.logger.Println("DAV credentials updated")
}

// CalendarObjectURL returns the address of a task's remote resource.
func (c *Client) CalendarObjectURL(uid string) string {
	return fmt.Sprintf("%s/calendars/%s/default/%s.ics", c.baseURL, c.config.CalendarCollection, uid)
}

// AddressObjectURL returns the address of a contact's remote resource.
func (c *Client) AddressObjectURL(uid string) string {
	return fmt.Sprintf("%s/addressbooks/%s/default/%s.vcf", c.baseURL, c.config.AddressBookCollection, uid)
}

// PutTask upserts the task's VEVENT at its UID address.
func (c *Client) PutTask(ctx context.Context, t *model.Task) error {
	payload, err := EncodeTask(t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to encode task %s: %w", t.CalDAVUID, err)
	}
	return c.put(ctx, c.CalendarObjectURL(t.CalDAVUID), contentTypeCalendar, payload)
}

// DeleteTask removes the task's remote resource.
func (c *Client) DeleteTask(ctx context.Context, uid string) error {
	return c.delete(ctx, c.CalendarObjectURL(uid))
}

// PutContact upserts the contact's vCard at its UID address.
func (c *Client) PutContact(ctx context.Context, contact *model.Contact) error {
	payload, err := EncodeContact(contact)
	if err != nil {
		return fmt.Errorf("failed to encode contact %s: %w", contact.CardDAVUID, err)
	}
	return c.put(ctx, c.AddressObjectURL(contact.CardDAVUID), contentTypeVCard, payload)
}

// DeleteContact removes the contact's remote resource.
func (c *Client) DeleteContact(ctx context.Context, uid string) error {
	return c.delete(ctx, c.AddressObjectURL(uid))
}

func (c *Client) put(ctx context.Context, url, contentType, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build PUT request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *Client) delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build DELETE request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Printf("%s %s failed: %d", req.Method, req.URL.Path, resp.StatusCode)
	return &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
}
