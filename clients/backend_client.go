package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"storefront-service/models"
)

// BackendError is a business error reported by the application backend as
// {success:false, message}. Message is shown to the user as is.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

type envelope struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Addresses []models.Address `json:"addresses,omitempty"`
}

// ImageFile is one image attached to a product upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// NewProduct is the seller product form sent to the backend.
type NewProduct struct {
	Name        string
	Description string
	Category    string
	Price       string
	OfferPrice  string
	Images      []ImageFile
}

// BackendClient calls the application backend on behalf of the signed-in user.
type BackendClient struct {
	base   baseClient
	tokens TokenSource
}

func NewBackendClient(baseURL string, timeout time.Duration, tokens TokenSource) *BackendClient {
	return &BackendClient{
		base:   newBaseClient("backend", baseURL, timeout),
		tokens: tokens,
	}
}

// GetAddresses lists the saved addresses of the authenticated user.
func (c *BackendClient) GetAddresses(ctx context.Context) ([]models.Address, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/user/get-address", "", nil)
	if err != nil {
		return nil, err
	}
	if env.Addresses == nil {
		return []models.Address{}, nil
	}
	return env.Addresses, nil
}

// AddAddress creates an address and returns the backend's confirmation message.
func (c *BackendClient) AddAddress(ctx context.Context, addr models.Address) (string, error) {
	body, err := jsonBody(map[string]models.Address{"address": addr})
	if err != nil {
		return "", err
	}
	env, err := c.call(ctx, http.MethodPost, "/api/user/add-address", "application/json", body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CreateOrder submits an order and returns the backend's confirmation message.
func (c *BackendClient) CreateOrder(ctx context.Context, order models.CreateOrderRequest) (string, error) {
	body, err := jsonBody(order)
	if err != nil {
		return "", err
	}
	env, err := c.call(ctx, http.MethodPost, "/api/order/create", "application/json", body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// AddProduct uploads a seller product as a multipart form. The body is
// streamed to the backend while the images are read.
func (c *BackendClient) AddProduct(ctx context.Context, p NewProduct) (string, error) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	contentType := w.FormDataContentType()

	go func() {
		pw.CloseWithError(writeProductForm(w, p))
	}()
	// unblocks the writer if the request ends before the body is consumed
	defer pr.Close()

	env, err := c.call(ctx, http.MethodPost, "/api/product/add", contentType, pr)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func writeProductForm(w *multipart.Writer, p NewProduct) error {
	fields := [][2]string{
		{"name", p.Name},
		{"description", p.Description},
		{"category", p.Category},
		{"price", p.Price},
		{"offerPrice", p.OfferPrice},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	for _, img := range p.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return fmt.Errorf("copy image %s: %w", img.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return nil
}

// call issues an authenticated request and unwraps the backend envelope.
func (c *BackendClient) call(ctx context.Context, method, path, contentType string, body io.Reader) (*envelope, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Accept", "application/json")
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	resp, err := c.base.do(ctx, method, path, nil, headers, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, &UpstreamError{Service: c.base.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(raw) > maxResponseBody {
		return nil, &UpstreamError{Service: c.base.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", maxResponseBody)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case decodeErr == nil && !env.Success && env.Message != "":
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: env.Message}
	case resp.StatusCode >= 400:
		return nil, &UpstreamError{
			Service:    c.base.service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body=%s", truncate(raw, maxErrorBody)),
		}
	case decodeErr != nil:
		return nil, &UpstreamError{Service: c.base.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	case !env.Success:
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: "request was not accepted"}
	}
	return &env, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func truncate(b []byte, n int) []byte {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		return b[:n]
	}
	return b
}
