/**
 * @description
 * This package provides a client for the Brevo transactional-email HTTP API.
 * It encapsulates authenticated request construction and response parsing
 * for sending a single HTML email and for verifying the configured API key
 * at startup.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package brevoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Brevo API endpoint.
const DefaultBaseURL = "https://api.brevo.com/v3"

// Client is a client for the Brevo API.
type Client struct {
	BaseURL     string
	APIKey      string
	SenderName  string
	SenderEmail string
	HTTPClient  *http.Client
}

// NewClient creates a new Brevo API client.
func NewClient(baseURL, apiKey, senderName, senderEmail string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		SenderName:  senderName,
		SenderEmail: senderEmail,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

type sendEmailResponse struct {
	MessageID string `json:"messageId"`
}

// ErrorResponse represents an error returned by the Brevo API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("brevo api error: %s - %s", e.Code, e.Message)
}

// SendEmail dispatches one HTML email and returns the provider message id.
func (c *Client) SendEmail(ctx context.Context, toEmail, toName, subject, htmlContent string) (string, error) {
	var payload sendEmailRequest
	payload.Sender.Name = c.SenderName
	payload.Sender.Email = c.SenderEmail
	payload.To = append(payload.To, struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	}{Email: toEmail, Name: toName})
	payload.Subject = subject
	payload.HTMLContent = htmlContent

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr != nil || apiErr.Message == "" {
			return "", fmt.Errorf("brevo api error: status=%d body=%s", resp.StatusCode, string(raw))
		}
		return "", &apiErr
	}

	var out sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// Some success responses carry no body; the send still happened.
		return "", nil
	}
	return out.MessageID, nil
}

// CheckAPIKey verifies the configured key by fetching the account resource.
func (c *Client) CheckAPIKey(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/account", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
