// Package telegram Telegram Bot API 客户端
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL Bot API 地址
const DefaultBaseURL = "https://api.telegram.org"

// ErrNotConfigured 未配置 Bot Token
var ErrNotConfigured = errors.New("telegram: bot token not configured")

// Config 客户端配置
type Config struct {
	BotToken string
	BaseURL  string
	Timeout  time.Duration
}

// Client Bot API 客户端
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
		timeout = 30 * time.Second
	}

	return &Client{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		token: cfg.BotToken,
	}
}

// Enabled 是否已配置
func (c *Client) Enabled() bool {
	return c.token != ""
}

// apiResponse Bot API 统一响应
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("/bot%s/%s", c.token, method)
}

func (c *Client) check(method string, resp *resty.Response, res *apiResponse, err error) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("telegram %s: %w", method, err)
	}
	if !res.OK {
		if res.Description == "" {
			return 0, fmt.Errorf("telegram %s: status %d", method, resp.StatusCode())
		}
		return 0, fmt.Errorf("telegram %s: %s", method, res.Description)
	}
	return res.Result.MessageID, nil
}

// SendMessage 发送 HTML 文本，返回 message_id
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (int64, error) {
	if !c.Enabled() {
		return 0, ErrNotConfigured
	}

	var res apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&res).
		SetError(&res).
		Post(c.endpoint("sendMessage"))
	return c.check("sendMessage", resp, &res, err)
}

// SendPhoto 以 multipart 上传图片，caption 可为空
func (c *Client) SendPhoto(ctx context.Context, chatID string, photo []byte, fileName, caption string) (int64, error) {
	if !c.Enabled() {
		return 0, ErrNotConfigured
	}
	if fileName == "" {
		fileName = "image.jpg"
	}

	form := map[string]string{"chat_id": chatID}
	if caption != "" {
		form["caption"] = caption
		form["parse_mode"] = "HTML"
	}

	var res apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetFileReader("photo", fileName, bytes.NewReader(photo)).
		SetResult(&res).
		SetError(&res).
		Post(c.endpoint("sendPhoto"))
	return c.check("sendPhoto", resp, &res, err)
}
