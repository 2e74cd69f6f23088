// Package salt is a client for the Salt REST API (salt-api). It handles
// token authentication, command execution through the local and runner
// clients, and job lookups. The rendering engine never talks to the
// network itself; it consumes this client only through the
// normalize.JobFetcher boundary.
package salt

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/saltview/internal/config"
	"github.com/harrison/saltview/internal/logger"
)

// Client kinds accepted by the API.
const (
	ClientLocal  = "local"
	ClientRunner = "runner"
)

// Sentinel errors for API failures.
var (
	// ErrAuthentication means the API rejected the configured
	// credentials.
	ErrAuthentication = errors.New("salt-api authentication failed")
	// ErrConnection means the API could not be reached or returned an
	// unusable response.
	ErrConnection = errors.New("salt-api connection failed")
)

// Request describes one command execution.
type Request struct {
	// Client selects the API client: ClientLocal or ClientRunner.
	Client string `json:"client"`
	// Fun is the function to execute, e.g. "state.apply".
	Fun string `json:"fun"`
	// Target selects minions; local client only.
	Target string `json:"tgt,omitempty"`
	// TargetType is the targeting mode, e.g. "glob".
	TargetType string `json:"tgt_type,omitempty"`
	// Args are positional arguments for the function.
	Args []string `json:"arg,omitempty"`
	// KWArgs are keyword arguments for the function.
	KWArgs map[string]any `json:"kwarg,omitempty"`
}

// Client talks to a salt-api server. It logs in lazily, caches the token
// until it expires, and re-authenticates once on a 401.
type Client struct {
	cfg        config.APIConfig
	httpClient *http.Client
	log        *logger.ConsoleLogger

	token       string
	tokenExpire time.Time
}

// NewClient creates a Client from the API configuration. A nil logger
// discards debug output.
func NewClient(cfg config.APIConfig, log *logger.ConsoleLogger) *Client {
	if log == nil {
		log = logger.New(nil, "")
	}
	transport := &http.Transport{}
	if cfg.TrustHost {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log: log,
	}
}

// Login authenticates against the API and caches the session token.
func (c *Client) Login() error {
	c.log.Debugf("authenticating to salt-api using %q external authentication", c.cfg.EAuth)

	body, err := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
		"eauth":    c.cfg.EAuth,
	})
	if err != nil {
		return fmt.Errorf("encode login request: %w", err)
	}

	resp, err := c.post("login", body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: credentials rejected", ErrAuthentication)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned status %d", ErrAuthentication, resp.StatusCode)
	}

	var ret struct {
		Return []struct {
			Token  string  `json:"token"`
			Expire float64 `json:"expire"`
		} `json:"return"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil || len(ret.Return) == 0 {
		return fmt.Errorf("%w: unable to parse login response", ErrAuthentication)
	}

	c.token = ret.Return[0].Token
	c.tokenExpire = time.Unix(int64(ret.Return[0].Expire), 0)
	c.log.Debugf("authentication succeeded, token expires %s", c.tokenExpire.Format(time.RFC3339))
	return nil
}

// tokenExpired reports whether a login is needed before the next call.
func (c *Client) tokenExpired() bool {
	return c.token == "" || time.Now().After(c.tokenExpire)
}

// Execute runs a command through the API and returns the decoded return
// object.
func (c *Client) Execute(req Request) (map[string]any, error) {
	if req.Client == "" {
		req.Client = ClientLocal
	}

	if c.tokenExpired() {
		if err := c.Login(); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	reqID := uuid.NewString()
	c.log.Debugf("executing salt command %s via %s client [%s]", req.Fun, req.Client, reqID)

	resp, err := c.post("", body, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Tokens can be revoked server-side before their expiry; one
	// re-login, then give up.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.Login(); err != nil {
			return nil, err
		}
		resp, err = c.post("", body, true)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d [%s]", ErrConnection, resp.StatusCode, reqID)
	}

	var ret map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		return nil, fmt.Errorf("%w: unable to parse API return as JSON [%s]: %v", ErrConnection, reqID, err)
	}
	return ret, nil
}

// Local executes a function through the local client.
func (c *Client) Local(fun, target string, args ...string) (map[string]any, error) {
	return c.Execute(Request{Client: ClientLocal, Fun: fun, Target: target, Args: args})
}

// Runner executes a function through the runner client.
func (c *Client) Runner(fun string, args ...string) (map[string]any, error) {
	return c.Execute(Request{Client: ClientRunner, Fun: fun, Args: args})
}

// LookupJob fetches a job return object by ID. Implements
// normalize.JobFetcher.
func (c *Client) LookupJob(jid string) (map[string]any, error) {
	return c.Execute(Request{
		Client: ClientRunner,
		Fun:    "jobs.lookup_jid",
		KWArgs: map[string]any{"jid": jid},
	})
}

// post issues one POST to the API, attaching the auth token when asked.
func (c *Client) post(path string, body []byte, withToken bool) (*http.Response, error) {
	target, err := url.JoinPath(c.cfg.URL, path)
	if err != nil {
		return nil, fmt.Errorf("%w: bad URL %q: %v", ErrConnection, c.cfg.URL, err)
	}

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if withToken {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrConnection, c.cfg.URL, err)
	}
	return resp, nil
}
