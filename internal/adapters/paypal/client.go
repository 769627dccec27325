package paypal

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"slow_travel/internal/adapters/observability"
	"slow_travel/internal/domain"
)

const Currency = "EUR"

// Client talks to the PayPal REST API (orders v2) with client-credentials auth.
// It implements domain.PaymentProvider.
type Client struct {
	base     string
	clientID string
	secret   string
	hc       *http.Client
	rl       *rate.Limiter

	mu      sync.Mutex
	token   string
	expires time.Time
}

func New(base, clientID, secret string, rps int) (*Client, error) {
	if clientID == "" || secret == "" {
		return nil, fmt.Errorf("%w: paypal client id and secret are required", domain.ErrNotConfigured)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		clientID: clientID,
		secret:   secret,
		hc:       &http.Client{Timeout: 20 * time.Second},
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ClientID is the public id the browser button SDK is loaded with.
func (c *Client) ClientID() string { return c.clientID }

// Disabled stands in for the client when credentials are missing. Every call
// fails with domain.ErrNotConfigured, so the wizard reports a payment failure.
type Disabled struct{}

func (Disabled) CreateOrder(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: paypal", domain.ErrNotConfigured)
}

func (Disabled) CaptureOrder(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: paypal", domain.ErrNotConfigured)
}

// ---- Public API ----

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateOrder creates a CAPTURE order for value EUR and returns the order id.
func (c *Client) CreateOrder(ctx context.Context, value, description string) (string, error) {
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount:      amount{CurrencyCode: Currency, Value: value},
			Description: description,
		}},
	}
	var out orderResponse
	if err := c.post(ctx, "orders.create", c.base+"/v2/checkout/orders", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("paypal: order created without id")
	}
	return out.ID, nil
}

// CaptureOrder captures an approved order and returns the capture (transaction) id.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	u := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.base, url.PathEscape(orderID))
	var out orderResponse
	if err := c.post(ctx, "orders.capture", u, struct{}{}, &out); err != nil {
		return "", err
	}
	if out.Status != "COMPLETED" {
		return "", fmt.Errorf("paypal: capture status %q", out.Status)
	}
	for _, pu := range out.PurchaseUnits {
		for _, cp := range pu.Payments.Captures {
			if cp.ID != "" {
				return cp.ID, nil
			}
		}
	}
	// Some sandbox responses omit captures; the order id is still a usable reference.
	return out.ID, nil
}

// ---- Internals ----

var (
	ErrNotFound      = errors.New("paypal: not found")
	ErrUnauthorized  = errors.New("paypal: unauthorized")
	ErrUnprocessable = errors.New("paypal: unprocessable")
)

// accessToken returns a cached bearer token, fetching a new one shortly before expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("paypal", "oauth2.token", 0, time.Since(start))
		return "", err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("paypal", "oauth2.token", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token status %d", ErrUnauthorized, resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	c.token = tok.AccessToken
	c.expires = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// post performs a JSON POST with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided. Every attempt
// carries the same PayPal-Request-Id so PayPal applies a retried call only once.
func (c *Client) post(ctx context.Context, endpoint, u string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()

	var lastErr error
	for i := 0; i < 4; i++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("PayPal-Request-Id", requestID)
		req.Header.Set("User-Agent", "slow-travel/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("paypal", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("paypal", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			// token revoked or expired early: fetch a new one and try again
			resp.Body.Close()
			c.dropToken()
			lastErr = ErrUnauthorized
			continue

		case http.StatusUnprocessableEntity:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w: %s", ErrUnprocessable, strings.TrimSpace(string(b)))

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
