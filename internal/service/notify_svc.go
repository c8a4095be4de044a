package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/model"
	"line_price_portal/pkg/line"
	"line_price_portal/pkg/telegram"
)

// LineSender LINE 推送
type LineSender interface {
	Enabled() bool
	PushText(ctx context.Context, to, text string) error
	QuotaConsumption(ctx context.Context) (*line.QuotaUsage, error)
}

// TelegramSender Telegram 推送
type TelegramSender interface {
	Enabled() bool
	SendMessage(ctx context.Context, chatID, text string) (int64, error)
	SendPhoto(ctx context.Context, chatID string, photo []byte, fileName, caption string) (int64, error)
}

var (
	_ LineSender     = (*line.Client)(nil)
	_ TelegramSender = (*telegram.Client)(nil)
)

// NotifyService 外部消息通知
// 所有发送都是尽力而为，失败只记日志
type NotifyService struct {
	line     LineSender
	telegram TelegramSender
	now      func() time.Time
	timeout  time.Duration
}

// NewNotifyService 创建通知服务
func NewNotifyService(lineClient LineSender, telegramClient TelegramSender) *NotifyService {
	return &NotifyService{
		line:     lineClient,
		telegram: telegramClient,
		now:      time.Now,
		timeout:  15 * time.Second,
	}
}

func (n *NotifyService) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
}

// NotifyApproved 通知申请人审核通过
func (n *NotifyService) NotifyApproved(ctx context.Context, req *model.AccessRequest) {
	if n.line == nil || !n.line.Enabled() || req.User == nil || req.User.Provider != model.ProviderLine {
		return
	}

	ctx, cancel := n.detach(ctx)
	defer cancel()

	if err := n.line.PushText(ctx, req.User.ProviderID, line.AccessApprovedMessage(req.ShopName)); err != nil {
		log.Warn().Err(err).Int64("request_id", req.ID).Msg("line approval notification failed")
	}
}

// PriceImageNotice 价格图片上传通知参数
type PriceImageNotice struct {
	Group        *model.PriceGroup
	Photo        []byte
	FileName     string
	SendLine     bool
	SendTelegram bool
	FirstImage   bool // 批量上传的第一张才发标题消息
}

// PriceImageUploaded 价格图片上传后推送到 LINE 群和 Telegram 群
func (n *NotifyService) PriceImageUploaded(ctx context.Context, notice PriceImageNotice) {
	ctx, cancel := n.detach(ctx)
	defer cancel()

	group := notice.Group
	now := n.now()

	if notice.SendLine && notice.FirstImage && group.LineGroupID != "" && n.line != nil && n.line.Enabled() {
		if err := n.line.PushText(ctx, group.LineGroupID, line.PriceUpdateMessage(group.Name, now)); err != nil {
			log.Warn().Err(err).Int64("price_group_id", group.ID).Msg("line price update failed")
		}
	}

	if !notice.SendTelegram || group.TelegramChatID == "" || n.telegram == nil || !n.telegram.Enabled() {
		return
	}

	if notice.FirstImage {
		if _, err := n.telegram.SendMessage(ctx, group.TelegramChatID, line.PriceUpdateHeader(group.Name, now)); err != nil {
			log.Warn().Err(err).Int64("price_group_id", group.ID).Msg("telegram header message failed")
		}
	}
	if _, err := n.telegram.SendPhoto(ctx, group.TelegramChatID, notice.Photo, notice.FileName, ""); err != nil {
		log.Warn().Err(err).Int64("price_group_id", group.ID).Msg("telegram photo failed")
	}
}

// LineQuota 本月 LINE 推送用量
// 未配置或查询失败时返回默认额度和错误说明
func (n *NotifyService) LineQuota(ctx context.Context) (*line.QuotaUsage, string) {
	if n.line == nil || !n.line.Enabled() {
		return line.NewQuotaUsage(0), "LINE_CHANNEL_ACCESS_TOKEN not configured"
	}
	usage, err := n.line.QuotaConsumption(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("line quota query failed")
		return line.NewQuotaUsage(0), err.Error()
	}
	return usage, ""
}
