// Package remote implements storage.Store over the sync server's HTTP
// document API. It is the backend the ledger uses when the user is signed in.
//
// Two access modes exist, mirroring the server's two surfaces:
//
//   - ForUser: the per-user partition users/{userKey}/..., authenticated with
//     the session token from Login/Register.
//   - ForProject: the flat project-wide layout used by the bulk sync bridge,
//     authenticated with an externally supplied sync key.
//
// Errors propagate to the caller as-is; there are no retries. Deadlines come
// from the caller's context.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
)

// Ensure Client implements the storage interfaces.
var (
	_ storage.Store       = (*Client)(nil)
	_ storage.BatchWriter = (*Client)(nil)
)

// Client talks to one partition of the sync server.
type Client struct {
	baseURL string
	httpc   *http.Client
	header  http.Header
}

// ForUser returns a client for the authenticated user's partition.
func ForUser(serverURL, token, userKey string) *Client {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/") + "/api/v1/users/" + url.PathEscape(userKey),
		httpc:   http.DefaultClient,
		header:  h,
	}
}

// ForProject returns a client for the flat project layout, authenticated by
// the sync key configured on the server.
func ForProject(serverURL, syncKey string) *Client {
	h := http.Header{}
	h.Set("X-Sync-Key", syncKey)
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/") + "/api/v1/project",
		httpc:   http.DefaultClient,
		header:  h,
	}
}

// Close is a no-op; the client holds no resources beyond the shared
// http.Client.
func (c *Client) Close() error { return nil }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

// ListPeople returns the people collection, newest first.
func (c *Client) ListPeople(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	if err := c.do(ctx, http.MethodGet, "/people", nil, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// SavePerson upserts one person record.
func (c *Client) SavePerson(ctx context.Context, p models.Person) error {
	return c.do(ctx, http.MethodPut, "/people/"+url.PathEscape(p.ID), p, nil)
}

// DeletePerson removes a person; the server cascades to their transactions
// and history atomically.
func (c *Client) DeletePerson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/people/"+url.PathEscape(id), nil, nil)
}

// ListTransactions returns the transactions collection, newest first.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// SaveTransaction upserts one transaction record.
func (c *Client) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	return c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(tx.ID), tx, nil)
}

// DeleteTransaction removes a transaction and, server-side, its history.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil)
}

// ListHistory returns every history entry, newest first.
func (c *Client) ListHistory(ctx context.Context) ([]models.TransactionHistory, error) {
	var entries []models.TransactionHistory
	if err := c.do(ctx, http.MethodGet, "/transactionHistory", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryForTransaction returns one transaction's edit trail, newest first.
func (c *Client) HistoryForTransaction(ctx context.Context, txID string) ([]models.TransactionHistory, error) {
	var entries []models.TransactionHistory
	path := "/transactionHistory?transactionId=" + url.QueryEscape(txID)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendHistory stores one pre-edit snapshot.
func (c *Client) AppendHistory(ctx context.Context, h models.TransactionHistory) error {
	return c.do(ctx, http.MethodPut, "/transactionHistory/"+url.PathEscape(h.ID), h, nil)
}

// ListCards returns the cards collection, newest first.
func (c *Client) ListCards(ctx context.Context) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	if err := c.do(ctx, http.MethodGet, "/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// SaveCard upserts one card record.
func (c *Client) SaveCard(ctx context.Context, card models.CreditCard) error {
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(card.ID), card, nil)
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

// ApplyBatch sends a batch the server applies in one SQL transaction.
func (c *Client) ApplyBatch(ctx context.Context, ops []storage.BatchOp) error {
	return c.do(ctx, http.MethodPost, "/batch", ops, nil)
}
