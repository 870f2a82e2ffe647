package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the outbound GoHighLevel surface. Every operation is a single
// authenticated HTTP call; errors carry status and body via *APIError.
// There is no retry, backoff or circuit breaking — callers decide.
type API interface {
	CreateContact(ctx context.Context, c Contact) (Contact, error)
	UpdateContact(ctx context.Context, id string, c Contact) (Contact, error)
	GetContact(ctx context.Context, id string) (Contact, error)
	SearchContacts(ctx context.Context, locationID, query string) ([]Contact, error)
	CreateOpportunity(ctx context.Context, o Opportunity) (Opportunity, error)
	ListPipelines(ctx context.Context, locationID string) ([]Pipeline, error)
	CreateTask(ctx context.Context, t Task) (Task, error)
	SendSMS(ctx context.Context, contactID, body string) error
	CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
	GetLocations(ctx context.Context) ([]Location, error)
	CreateSubAccount(ctx context.Context, req SubAccountRequest) (Location, error)
	CreateAPIKey(ctx context.Context, locationID, name string) (APIKey, error)
	RegisterDomain(ctx context.Context, locationID, domain string) error
}

// ClientOptions configures the HTTP client. Zero values get sane defaults.
type ClientOptions struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	HTTPClient *http.Client
}

// Client talks to the GHL REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://services.leadconnectorhq.com"
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "2021-07-28"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		apiVersion: apiVersion,
		httpClient: httpClient,
	}
}

// do issues one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) CreateContact(ctx context.Context, contact Contact) (Contact, error) {
	var resp struct {
		Contact Contact `json:"contact"`
	}
	err := c.do(ctx, http.MethodPost, "/contacts/", contact, &resp)
	return resp.Contact, err
}

func (c *Client) UpdateContact(ctx context.Context, id string, contact Contact) (Contact, error) {
	var resp struct {
		Contact Contact `json:"contact"`
	}
	err := c.do(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), contact, &resp)
	return resp.Contact, err
}

func (c *Client) GetContact(ctx context.Context, id string) (Contact, error) {
	var resp struct {
		Contact Contact `json:"contact"`
	}
	err := c.do(ctx, http.MethodGet, "/contacts/"+url.PathEscape(id), nil, &resp)
	return resp.Contact, err
}

func (c *Client) SearchContacts(ctx context.Context, locationID, query string) ([]Contact, error) {
	q := url.Values{}
	q.Set("locationId", locationID)
	q.Set("query", query)
	var resp struct {
		Contacts []Contact `json:"contacts"`
	}
	err := c.do(ctx, http.MethodGet, "/contacts/?"+q.Encode(), nil, &resp)
	return resp.Contacts, err
}

func (c *Client) CreateOpportunity(ctx context.Context, o Opportunity) (Opportunity, error) {
	var resp struct {
		Opportunity Opportunity `json:"opportunity"`
	}
	err := c.do(ctx, http.MethodPost, "/opportunities/", o, &resp)
	return resp.Opportunity, err
}

func (c *Client) ListPipelines(ctx context.Context, locationID string) ([]Pipeline, error) {
	q := url.Values{}
	q.Set("locationId", locationID)
	var resp struct {
		Pipelines []Pipeline `json:"pipelines"`
	}
	err := c.do(ctx, http.MethodGet, "/opportunities/pipelines?"+q.Encode(), nil, &resp)
	return resp.Pipelines, err
}

func (c *Client) CreateTask(ctx context.Context, t Task) (Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPost, "/contacts/"+url.PathEscape(t.ContactID)+"/tasks", t, &resp)
	return resp.Task, err
}

func (c *Client) SendSMS(ctx context.Context, contactID, body string) error {
	msg := Message{Type: "SMS", ContactID: contactID, Message: body}
	return c.do(ctx, http.MethodPost, "/conversations/messages", msg, nil)
}

func (c *Client) CreateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	var resp Appointment
	err := c.do(ctx, http.MethodPost, "/calendars/events/appointments", a, &resp)
	return resp, err
}

func (c *Client) GetLocations(ctx context.Context) ([]Location, error) {
	var resp struct {
		Locations []Location `json:"locations"`
	}
	err := c.do(ctx, http.MethodGet, "/locations/search", nil, &resp)
	return resp.Locations, err
}

func (c *Client) CreateSubAccount(ctx context.Context, req SubAccountRequest) (Location, error) {
	var resp Location
	err := c.do(ctx, http.MethodPost, "/locations/", req, &resp)
	return resp, err
}

func (c *Client) CreateAPIKey(ctx context.Context, locationID, name string) (APIKey, error) {
	body := map[string]string{"locationId": locationID, "name": name}
	var resp APIKey
	err := c.do(ctx, http.MethodPost, "/locations/"+url.PathEscape(locationID)+"/api-keys", body, &resp)
	return resp, err
}

func (c *Client) RegisterDomain(ctx context.Context, locationID, domain string) error {
	body := map[string]string{"domain": domain}
	return c.do(ctx, http.MethodPost, "/locations/"+url.PathEscape(locationID)+"/domains", body, nil)
}
