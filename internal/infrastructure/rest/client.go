package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// Generic fallback messages when the backend error body carries no usable
// detail.
const (
	msgRequestFailed      = "Request failed"
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// TokenSource supplies the current bearer token. The session store implements
// it; the client never reads persisted storage on its own.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to a TokenSource.
type TokenSourceFunc func() string

// Token implements TokenSource.
func (f TokenSourceFunc) Token() string { return f() }

// Client talks to the sweet shop backend over its REST surface. It implements
// both ports.CatalogAPI and ports.AuthAPI. Every catalog call attaches the
// current session token when present; requests without a token go out
// unauthenticated and the backend decides whether the action requires one.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *logger.Logger
}

// NewClient builds a backend client against a base URL such as
// "http://localhost:5173".
func NewClient(baseURL string, tokens TokenSource, log *logger.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
		log:    log,
	}
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]any{"email": email, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out, "", msgLoginFailed); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Register creates an account and returns its access token. is_admin is
// hardwired to false: self-registration can never mint an admin.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (string, error) {
	body := map[string]any{
		"email":     email,
		"password":  password,
		"full_name": fullName,
		"is_admin":  false,
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out, "", msgRegistrationFailed); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// WhoAmI resolves the identity behind a token. The token is passed explicitly
// instead of read from the source because the session store resolves candidate
// tokens that may already have been superseded.
func (c *Client) WhoAmI(ctx context.Context, token string) (*entity.User, error) {
	var out entity.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out, token, msgRequestFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches the items matching the filter. An entirely empty filter uses
// the unfiltered listing endpoint; otherwise only the non-empty criteria are
// serialized as query parameters.
func (c *Client) List(ctx context.Context, filter dto.FilterCriteria) ([]entity.Sweet, error) {
	path := "/api/sweets"
	var query url.Values
	if !filter.IsEmpty() {
		path = "/api/sweets/search"
		query = url.Values{}
		if filter.Query != "" {
			query.Set("q", filter.Query)
		}
		if filter.Category != "" {
			query.Set("category", filter.Category)
		}
		if filter.MinPrice != nil {
			query.Set("min_price", filter.MinPrice.String())
		}
		if filter.MaxPrice != nil {
			query.Set("max_price", filter.MaxPrice.String())
		}
	}
	var out []entity.Sweet
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out, c.tokens.Token(), msgRequestFailed); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a new sweet.
func (c *Client) Create(ctx context.Context, in dto.CreateSweetRequest) (*entity.Sweet, error) {
	body := map[string]any{
		"name":     in.Name,
		"category": in.Category,
		// The backend expects bare JSON numbers for prices, not the quoted
		// form decimal.Decimal marshals to.
		"price":    json.Number(in.Price.String()),
		"quantity": in.Quantity,
	}
	var out entity.Sweet
	if err := c.do(ctx, http.MethodPost, "/api/sweets/", nil, body, &out, c.tokens.Token(), msgRequestFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePrice changes only the price of a sweet; other fields are untouched.
func (c *Client) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*entity.Sweet, error) {
	body := map[string]any{"price": json.Number(price.String())}
	var out entity.Sweet
	if err := c.do(ctx, http.MethodPut, "/api/sweets/"+id, nil, body, &out, c.tokens.Token(), msgRequestFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes a sweet. Confirmation is the caller's responsibility; the
// backend decides whether deleting twice is an error.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sweets/"+id, nil, nil, nil, c.tokens.Token(), msgRequestFailed)
}

// Purchase decrements stock. The backend is the sole authority on
// insufficient stock; no local pre-validation happens here.
func (c *Client) Purchase(ctx context.Context, id string, quantity int) (*entity.Sweet, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: purchase quantity must be positive", domain.ErrValidation)
	}
	return c.stockOp(ctx, id, "purchase", quantity)
}

// Restock increments stock.
func (c *Client) Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: restock quantity must be positive", domain.ErrValidation)
	}
	return c.stockOp(ctx, id, "restock", quantity)
}

func (c *Client) stockOp(ctx context.Context, id, op string, quantity int) (*entity.Sweet, error) {
	query := url.Values{"quantity": []string{strconv.Itoa(quantity)}}
	var out entity.Sweet
	if err := c.do(ctx, http.MethodPost, "/api/sweets/"+id+"/"+op, query, nil, &out, c.tokens.Token(), msgRequestFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request and decodes the response into out (when non-nil). A
// non-2xx status becomes a *RequestError carrying the backend detail message
// or the fallback.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, token, fallback string) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Detail: extractDetail(resp.Body, fallback)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
