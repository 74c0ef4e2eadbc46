package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kideats-be/internal/logger"

	"go.uber.org/zap"
)

const (
	snapSandboxURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	snapProductionURL = "https://app.midtrans.com/snap/v1/transactions"

	gatewayAttempts = 3
	gatewayBackoff  = 300 * time.Millisecond
)

type Gateway interface {
	CreateTransaction(ctx context.Context, req *SnapRequest) (*SnapResponse, error)
}

type midtransGateway struct {
	serverKey  string
	baseURL    string
	httpClient *http.Client
}

func NewMidtransGateway(serverKey string, production bool) Gateway {
	if serverKey == "" {
		logger.L().Warn("Midtrans server key is empty")
	}

	baseURL := snapSandboxURL
	if production {
		baseURL = snapProductionURL
	}

	return &midtransGateway{
		serverKey: serverKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateTransaction submits a Snap transaction and returns the client
// payment token plus redirect URL. Transport errors and gateway 5xx are
// retried with backoff; a 4xx is final.
func (g *midtransGateway) CreateTransaction(ctx context.Context, snapReq *SnapRequest) (*SnapResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("transaction_id", snapReq.TransactionDetails.OrderID),
		zap.Int64("gross_amount", snapReq.TransactionDetails.GrossAmount),
		zap.Int("item_count", len(snapReq.ItemDetails)),
	)

	jsonBody, err := json.Marshal(snapReq)
	if err != nil {
		log.Error("failed to marshal snap request", zap.Error(err))
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= gatewayAttempts; attempt++ {
		resp, retryable, err := g.doRequest(ctx, log, jsonBody)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable || attempt == gatewayAttempts {
			break
		}

		log.Warn("retrying snap transaction",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(gatewayBackoff * time.Duration(attempt)):
		}
	}

	return nil, lastErr
}

func (g *midtransGateway) doRequest(ctx context.Context, log *zap.Logger, jsonBody []byte) (*SnapResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, false, err
	}

	// Midtrans Basic auth: server key as username, empty password.
	req.SetBasicAuth(g.serverKey, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("snap request failed", zap.Error(err))
		return nil, true, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read snap response body", zap.Error(err))
		return nil, true, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("midtrans returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, string(bodyBytes))
	}

	var snapResp SnapResponse
	if err := json.Unmarshal(bodyBytes, &snapResp); err != nil {
		log.Error("failed decoding snap response", zap.Error(err))
		return nil, false, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if snapResp.Token == "" {
		log.Error("snap response missing token", zap.ByteString("response", bodyBytes))
		return nil, false, fmt.Errorf("%w: empty token in response", ErrGateway)
	}

	log.Info("snap transaction created")

	return &snapResp, false, nil
}
