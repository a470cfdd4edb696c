package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simvest/internal/engine"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) ListCompanies(ctx context.Context) ([]engine.Company, error) {
	var out struct {
		Companies []engine.Company `json:"companies"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies", nil, &out)
	return out.Companies, err
}

func (c *Client) CompanyDetail(ctx context.Context, id string) (engine.Company, error) {
	var out engine.Company
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Invest(ctx context.Context, buyerID, sellerID string, amount float64) (engine.Investment, error) {
	var out struct {
		Investment engine.Investment `json:"investment"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/investments", map[string]any{
		"buyer_id":  buyerID,
		"seller_id": sellerID,
		"amount":    amount,
	}, &out)
	return out.Investment, err
}

func (c *Client) TakeLoan(ctx context.Context, companyID string, amount float64) (engine.Transaction, error) {
	var out struct {
		Transaction engine.Transaction `json:"transaction"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/loans", map[string]any{
		"company_id": companyID,
		"amount":     amount,
	}, &out)
	return out.Transaction, err
}

func (c *Client) ListTransactions(ctx context.Context, limit int) ([]engine.Transaction, error) {
	path := "/v1/transactions"
	if limit > 0 {
		path = fmt.Sprintf("/v1/transactions?limit=%d", limit)
	}
	var out struct {
		Transactions []engine.Transaction `json:"transactions"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Transactions, err
}

func (c *Client) Disqualify(ctx context.Context, companyID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/companies/"+url.PathEscape(companyID)+"/disqualify", map[string]any{}, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
