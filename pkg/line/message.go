package line

import (
	"fmt"
	"time"
)

// buddhistEraOffset 佛历 = 公历 + 543
const buddhistEraOffset = 543

var bangkok = loadBangkok()

func loadBangkok() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		// 无 tzdata 时退回固定 UTC+7
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// FormatThaiDate DD/MM/YYYY（佛历）
func FormatThaiDate(t time.Time) string {
	t = t.In(bangkok)
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year()+buddhistEraOffset)
}

// PriceUpdateMessage 价格更新通知
func PriceUpdateMessage(groupName string, at time.Time) string {
	local := at.In(bangkok)
	return fmt.Sprintf("📢 อัพเดทราคาวันที่ %s %02d:%02d\n\n📸 %s",
		FormatThaiDate(at), local.Hour(), local.Minute(), groupName)
}

// PriceUpdateHeader Telegram 头部消息，时间精确到秒
func PriceUpdateHeader(groupName string, at time.Time) string {
	local := at.In(bangkok)
	return fmt.Sprintf("📢 อัพเดทราคาวันที่ %s %s\n\n📸 %s",
		FormatThaiDate(at), local.Format("15:04:05"), groupName)
}

// AccessApprovedMessage 申请通过通知
func AccessApprovedMessage(shopName string) string {
	return fmt.Sprintf("✅ คำขอเข้าใช้งานของ %s ได้รับการอนุมัติแล้ว", shopName)
}
