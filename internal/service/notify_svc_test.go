package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"line_price_portal/internal/model"
	"line_price_portal/pkg/line"
)

type fakeLine struct {
	enabled bool
	pushed  map[string][]string
	err     error
}

func (f *fakeLine) Enabled() bool { return f.enabled }

func (f *fakeLine) PushText(_ context.Context, to, text string) error {
	if f.pushed == nil {
		f.pushed = map[string][]string{}
	}
	f.pushed[to] = append(f.pushed[to], text)
	return f.err
}

func (f *fakeLine) QuotaConsumption(context.Context) (*line.QuotaUsage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return line.NewQuotaUsage(10), nil
}

type fakeTelegram struct {
	messages []string
	photos   []string
}

func (f *fakeTelegram) Enabled() bool { return true }

func (f *fakeTelegram) SendMessage(_ context.Context, chatID, text string) (int64, error) {
	f.messages = append(f.messages, chatID+":"+text)
	return 1, nil
}

func (f *fakeTelegram) SendPhoto(_ context.Context, chatID string, _ []byte, fileName, _ string) (int64, error) {
	f.photos = append(f.photos, chatID+":"+fileName)
	return 2, nil
}

func TestNotifyService_NotifyApproved(t *testing.T) {
	ln := &fakeLine{enabled: true}
	svc := NewNotifyService(ln, nil)

	svc.NotifyApproved(context.Background(), &model.AccessRequest{
		ShopName: "Shop1",
		User:     &model.User{Provider: model.ProviderLine, ProviderID: "Uabc"},
	})
	assert.Len(t, ln.pushed["Uabc"], 1)

	// 未加载用户或未启用时不发送
	svc.NotifyApproved(context.Background(), &model.AccessRequest{ShopName: "Shop1"})
	NewNotifyService(&fakeLine{}, nil).NotifyApproved(context.Background(), &model.AccessRequest{
		User: &model.User{Provider: model.ProviderLine, ProviderID: "Uabc"},
	})
	assert.Len(t, ln.pushed["Uabc"], 1)
}

func TestNotifyService_PriceImageUploaded(t *testing.T) {
	ln := &fakeLine{enabled: true}
	tg := &fakeTelegram{}
	svc := NewNotifyService(ln, tg)
	group := &model.PriceGroup{Name: "Gold", LineGroupID: "C1", TelegramChatID: "-100"}

	svc.PriceImageUploaded(context.Background(), PriceImageNotice{
		Group: group, FileName: "1.png", SendLine: true, SendTelegram: true, FirstImage: true,
	})
	svc.PriceImageUploaded(context.Background(), PriceImageNotice{
		Group: group, FileName: "2.png", SendLine: true, SendTelegram: true,
	})

	// LINE 只发一次标题，Telegram 标题一次、图片两次
	assert.Len(t, ln.pushed["C1"], 1)
	assert.True(t, strings.Contains(ln.pushed["C1"][0], "Gold"))
	assert.Len(t, tg.messages, 1)
	assert.Equal(t, []string{"-100:1.png", "-100:2.png"}, tg.photos)
}

func TestNotifyService_LineQuota(t *testing.T) {
	usage, msg := NewNotifyService(&fakeLine{enabled: true}, nil).LineQuota(context.Background())
	assert.Equal(t, int64(10), usage.TotalUsage)
	assert.Empty(t, msg)

	usage, msg = NewNotifyService(&fakeLine{enabled: true, err: errors.New("status 500")}, nil).LineQuota(context.Background())
	assert.Equal(t, int64(0), usage.TotalUsage)
	assert.Contains(t, msg, "500")

	_, msg = NewNotifyService(nil, nil).LineQuota(context.Background())
	assert.NotEmpty(t, msg)
}
