// Package client holds the outbound HTTP clients for the sibling services:
// authentication-rest-service, user-rest-service and email-rest-service.
// Every call is a single attempt; retries are left to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Endpoints carries the sibling-service URL templates. Templates embed
// {authenticationId} placeholders substituted per call.
type Endpoints struct {
	AuthenticationActivate string
	AuthenticationDelete   string
	AuthenticationPassword string
	UserActivate           string
	UserDelete             string
	Email                  string
}

// RemoteServices issues the PUT/DELETE/POST calls that propagate account
// state to the sibling services.
type RemoteServices struct {
	http      *http.Client
	endpoints Endpoints
	emailFrom string
}

func NewRemoteServices(endpoints Endpoints, emailFrom string) *RemoteServices {
	return &RemoteServices{
		http:      &http.Client{Timeout: 15 * time.Second},
		endpoints: endpoints,
		emailFrom: emailFrom,
	}
}

// ActivateAuthentication tells the authentication service to activate the
// credential record for the given authentication id.
func (r *RemoteServices) ActivateAuthentication(ctx context.Context, authenticationID string) (string, error) {
	endpoint := strings.Replace(r.endpoints.AuthenticationActivate, "{authenticationId}", authenticationID, 1)
	return r.call(ctx, http.MethodPut, endpoint, nil)
}

// ActivateUser tells the user service to activate the profile record.
func (r *RemoteServices) ActivateUser(ctx context.Context, authenticationID string) (string, error) {
	endpoint := strings.Replace(r.endpoints.UserActivate, "{authenticationId}", authenticationID, 1)
	return r.call(ctx, http.MethodPut, endpoint, nil)
}

// DeleteAuthentication removes the credential record.
func (r *RemoteServices) DeleteAuthentication(ctx context.Context, authenticationID string) (string, error) {
	endpoint := strings.Replace(r.endpoints.AuthenticationDelete, "{authenticationId}", authenticationID, 1)
	return r.call(ctx, http.MethodDelete, endpoint, nil)
}

// DeleteUser removes the profile record.
func (r *RemoteServices) DeleteUser(ctx context.Context, authenticationID string) (string, error) {
	endpoint := strings.Replace(r.endpoints.UserDelete, "{authenticationId}", authenticationID, 1)
	return r.call(ctx, http.MethodDelete, endpoint, nil)
}

// UpdatePassword sets a new password on the authentication service.
func (r *RemoteServices) UpdatePassword(ctx context.Context, authenticationID, password string) (string, error) {
	body := map[string]string{
		"authenticationId": authenticationID,
		"password":         password,
	}
	return r.call(ctx, http.MethodPut, r.endpoints.AuthenticationPassword, body)
}

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmail posts a message to the email service and relays its response
// message.
func (r *RemoteServices) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	return r.call(ctx, http.MethodPost, r.endpoints.Email, emailRequest{
		From:    r.emailFrom,
		To:      to,
		Subject: subject,
		Body:    body,
	})
}

// call performs one HTTP round trip. A non-2xx status surfaces the response
// body in the error so the workflow can relay the downstream failure
// message as-is. On success the "message" field of a JSON response is
// returned when present, otherwise the raw body.
func (r *RemoteServices) call(ctx context.Context, method, endpoint string, body any) (string, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("remote call %s %s returned %d: %s", method, endpoint, resp.StatusCode, respBody)
		return "", fmt.Errorf("%s", strings.TrimSpace(string(respBody)))
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok {
			return msg, nil
		}
	}
	return string(respBody), nil
}
