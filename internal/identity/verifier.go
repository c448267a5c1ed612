package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthenticated token 缺失、无效或未通过网关校验
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// Identity 已通过校验的调用方身份
type Identity struct {
	UserID string
}

// Verifier Token 校验接口
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HTTPVerifier 调用外部身份网关校验 Bearer Token
type HTTPVerifier struct {
	verifyURL  string
	httpClient *http.Client
}

// NewHTTPVerifier 创建网关校验器
func NewHTTPVerifier(verifyURL string, timeoutMS int) *HTTPVerifier {
	timeout := 3 * time.Second
	if timeoutMS > 0 {
		timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	return &HTTPVerifier{
		verifyURL:  strings.TrimSpace(verifyURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type verifyResponse struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	UserID          string `json:"user_id"`
}

// Verify 校验 token，未通过时返回 ErrUnauthenticated
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.verifyURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity: verify endpoint returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("identity: decode verify response: %w", err)
	}
	if !result.IsAuthenticated || strings.TrimSpace(result.UserID) == "" {
		return nil, ErrUnauthenticated
	}
	return &Identity{UserID: strings.TrimSpace(result.UserID)}, nil
}
