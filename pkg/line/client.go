// Package line LINE Messaging API 与 LINE Login 资料校验
package line

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL LINE API 地址
const DefaultBaseURL = "https://api.line.me"

// FreeQuota 免费方案每月推送额度
const FreeQuota = 1000

// ErrNotConfigured 未配置 Channel Access Token
var ErrNotConfigured = errors.New("line: channel access token not configured")

// ErrInvalidAccessToken 用户 access token 校验失败
var ErrInvalidAccessToken = errors.New("line: invalid access token")

// Config 客户端配置
type Config struct {
	ChannelAccessToken string
	BaseURL            string
	Timeout            time.Duration
}

// Client LINE API 客户端
type Client struct {
	http  *resty.Client
	token string
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		token: cfg.ChannelAccessToken,
	}
}

// Enabled 是否已配置推送
func (c *Client) Enabled() bool {
	return c.token != ""
}

// ==================== Messaging ====================

type message struct {
	Type               string `json:"type"`
	Text               string `json:"text,omitempty"`
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []message `json:"messages"`
}

// PushText 推送文本消息到用户或群组
func (c *Client) PushText(ctx context.Context, to, text string) error {
	return c.push(ctx, to, message{Type: "text", Text: text})
}

// PushImage 推送图片消息
func (c *Client) PushImage(ctx context.Context, to, imageURL string) error {
	return c.push(ctx, to, message{Type: "image", OriginalContentURL: imageURL, PreviewImageURL: imageURL})
}

func (c *Client) push(ctx context.Context, to string, msgs ...message) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if to == "" {
		return errors.New("line: recipient is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(pushRequest{To: to, Messages: msgs}).
		Post("/v2/bot/message/push")
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("line push: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// ==================== Quota ====================

// QuotaUsage 本月推送用量
type QuotaUsage struct {
	TotalUsage  int64 `json:"total_usage"`
	FreeQuota   int64 `json:"free_quota"`
	Remaining   int64 `json:"remaining"`
	PercentUsed int   `json:"percent_used"`
}

// NewQuotaUsage 根据已用量计算剩余额度
func NewQuotaUsage(used int64) *QuotaUsage {
	remaining := FreeQuota - used
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaUsage{
		TotalUsage:  used,
		FreeQuota:   FreeQuota,
		Remaining:   remaining,
		PercentUsed: int(math.Round(float64(used) / FreeQuota * 100)),
	}
}

// QuotaConsumption 查询本月已用推送数
func (c *Client) QuotaConsumption(ctx context.Context) (*QuotaUsage, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	var res struct {
		TotalUsage int64 `json:"totalUsage"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetResult(&res).
		Get("/v2/bot/message/quota/consumption")
	if err != nil {
		return nil, fmt.Errorf("line quota: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("line quota: status %d", resp.StatusCode())
	}
	return NewQuotaUsage(res.TotalUsage), nil
}

// ==================== Login ====================

// Profile LINE 用户资料
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage"`
}

// VerifyProfile 用用户 access token 查询资料，用于校验登录请求
func (c *Client) VerifyProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&profile).
		Get("/v2/profile")
	if err != nil {
		return nil, fmt.Errorf("line profile: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || profile.UserID == "" {
		return nil, ErrInvalidAccessToken
	}
	return &profile, nil
}
