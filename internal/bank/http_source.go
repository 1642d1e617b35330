package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"club-recon/internal/domain"
)

// HTTPSource fetches transactions from a JSON endpoint:
//
//	GET {base}/accounts/{ref}/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// answering {"transactions": [RawRecord...]}.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSource(baseURL, apiKey string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

type transactionsResponse struct {
	Transactions []domain.RawRecord `json:"transactions"`
}

func (s *HTTPSource) FetchTransactions(ctx context.Context, accountRef string, from, to time.Time) ([]domain.RawRecord, error) {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/accounts/%s/transactions?%s", s.baseURL, url.PathEscape(accountRef), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bank responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	return out.Transactions, nil
}
