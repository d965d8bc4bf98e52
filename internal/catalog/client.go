package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://api.escuelajs.co/api/v1"
	DefaultTimeout = 10 * time.Second
	DefaultLimit   = 20
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// consecutive failures before the breaker opens
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Client talks to the remote catalog and auth REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fiber.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http: &fiber.Client{
			UserAgent:   "storefront",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// a 4xx is the caller's problem, not an unhealthy remote
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return c
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(r)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("catalog: decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) send(r request) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var a *fiber.Agent
	switch r.method {
	case fiber.MethodPost:
		a = c.http.Post(u)
	case fiber.MethodPut:
		a = c.http.Put(u)
	default:
		a = c.http.Get(u)
	}
	a.Timeout(c.timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if r.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+r.token)
	}
	if r.body != nil {
		a.JSON(r.body)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog: %s %s: %w", r.method, r.path, errors.Join(errs...))
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Message: remoteMessage(body)}
	}
	return body, nil
}

// remoteMessage pulls the "message" field out of an error body. The
// remote sends either a string or a list of strings.
func remoteMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(payload.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func page(limit, offset int) url.Values {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}}
}

func (c *Client) ListProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{method: fiber.MethodGet, path: "/products", query: page(limit, offset)}, &out)
	return out, err
}

// GetProduct fetches one product. Concurrent lookups of the same id share
// a single remote call. The remote answers 400 for unknown ids, which is
// reported as ErrNotFound too.
func (c *Client) GetProduct(ctx context.Context, id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	v, err, _ := c.sfg.Do(strconv.Itoa(id), func() (interface{}, error) {
		var p Product
		err := c.do(ctx, request{method: fiber.MethodGet, path: "/products/" + strconv.Itoa(id)}, &p)
		return p, err
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return Product{}, err
	}
	return v.(Product), nil
}

func (c *Client) ProductsByCategory(ctx context.Context, categoryID, limit, offset int) ([]Product, error) {
	var out []Product
	path := "/categories/" + strconv.Itoa(categoryID) + "/products"
	err := c.do(ctx, request{method: fiber.MethodGet, path: path, query: page(limit, offset)}, &out)
	return out, err
}

func (c *Client) SearchProducts(ctx context.Context, title string) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{method: fiber.MethodGet, path: "/products/", query: url.Values{"title": {title}}}, &out)
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, request{method: fiber.MethodGet, path: "/categories"}, &out)
	return out, err
}

func (c *Client) GetCategory(ctx context.Context, id int) (Category, error) {
	var out Category
	err := c.do(ctx, request{method: fiber.MethodGet, path: "/categories/" + strconv.Itoa(id)}, &out)
	return out, err
}
