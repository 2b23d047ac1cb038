package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.matule.ru/api/"
	DefaultTimeout = 30 * time.Second
)

// TokenProvider returns the current auth token, or "" when signed out.
type TokenProvider func() string

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenProvider
	Logger  logrus.FieldLogger
	// Transport overrides the underlying round tripper. Tests use it to
	// talk to httptest servers.
	Transport http.RoundTripper
}

// Client is the REST interface of the backend. One method per endpoint;
// non-2xx responses come back as *APIError.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = &loggingTransport{next: transport, log: cfg.Logger}
	transport = &authTransport{next: transport, tokens: cfg.Tokens}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		log: cfg.Logger,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Register(ctx context.Context, req RequestRegister) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPost, "collections/users/records", req)
}

func (c *Client) Auth(ctx context.Context, req RequestAuth) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPost, "collections/users/auth-with-password", req)
}

func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "collections/users/records/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, patch UserPatch) (*User, error) {
	var fields []formField
	fields = appendOptional(fields, "email", patch.Email)
	fields = appendOptional(fields, "firstname", patch.Firstname)
	fields = appendOptional(fields, "lastname", patch.Lastname)
	fields = appendOptional(fields, "secondname", patch.Secondname)
	fields = appendOptional(fields, "datebirthday", patch.DateBirthday)
	fields = appendOptional(fields, "gender", patch.Gender)

	body, err := c.sendMultipart(ctx, http.MethodPatch, "collections/users/records/"+url.PathEscape(userID), fields, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := decode(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUsersAuth(ctx context.Context) (*Page[UserAuth], error) {
	var page Page[UserAuth]
	if err := c.getJSON(ctx, "collections/_authOrigins/records", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Logout(ctx context.Context, tokenID string) error {
	_, err := c.do(ctx, http.MethodDelete, "collections/_authOrigins/records/"+url.PathEscape(tokenID), nil, nil, "")
	return err
}

func (c *Client) GetNews(ctx context.Context) (*Page[News], error) {
	var page Page[News]
	if err := c.getJSON(ctx, "collections/news/records", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProducts lists products. A non-empty filter is passed through as the
// backend filter expression.
func (c *Client) GetProducts(ctx context.Context, filter string) (*Page[ProductItem], error) {
	var query url.Values
	if filter != "" {
		query = url.Values{"filter": []string{filter}}
	}
	var page Page[ProductItem]
	if err := c.getJSON(ctx, "collections/products/records", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*ProductAPI, error) {
	var product ProductAPI
	if err := c.getJSON(ctx, "collections/products/records/"+url.PathEscape(productID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) GetProjects(ctx context.Context) (*Page[ProjectAPI], error) {
	var page Page[ProjectAPI]
	if err := c.getJSON(ctx, "collections/project/records", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateProject(ctx context.Context, req RequestProject, image *Image) (*ProjectAPI, error) {
	fields := []formField{
		{"title", req.Title},
		{"typeProject", req.TypeProject},
		{"user_id", req.UserID},
		{"dateStart", req.DateStart},
		{"dateEnd", req.DateEnd},
		{"gender", req.Gender},
		{"description_source", req.DescriptionSource},
		{"category", req.Category},
	}
	body, err := c.sendMultipart(ctx, http.MethodPost, "collections/project/records", fields, image)
	if err != nil {
		return nil, err
	}
	var project ProjectAPI
	if err := decode(body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateCartItem(ctx context.Context, req RequestCart) (*ResponseCart, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "collections/cart/records", req)
	if err != nil {
		return nil, err
	}
	var cart ResponseCart
	if err := decode(body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, cartItemID string, req RequestCart) (*ResponseCart, error) {
	fields := []formField{
		{"user_id", req.UserID},
		{"product_id", req.ProductID},
		{"count", strconv.Itoa(req.Count)},
	}
	body, err := c.sendMultipart(ctx, http.MethodPatch, "collections/cart/records/"+url.PathEscape(cartItemID), fields, nil)
	if err != nil {
		return nil, err
	}
	var cart ResponseCart
	if err := decode(body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) CreateOrder(ctx context.Context, req RequestOrder) (*ResponseOrder, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "collections/orders/records", req)
	if err != nil {
		return nil, err
	}
	var order ResponseOrder
	if err := decode(body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(payload), "application/json")
}

type formField struct {
	name  string
	value string
}

func appendOptional(fields []formField, name string, value *string) []formField {
	if value == nil {
		return fields
	}
	return append(fields, formField{name, *value})
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields []formField, image *Image) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", f.name, err)
		}
	}
	if image != nil {
		contentType := image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Name))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, fmt.Errorf("write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}

// decode treats an empty or null body as an error the same way a failed
// request is treated.
func decode(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &APIError{StatusCode: http.StatusOK}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
