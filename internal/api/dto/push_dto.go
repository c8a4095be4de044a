package dto

// PushSubscribeRequest Web Push 订阅
type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// PushUnsubscribeRequest 取消订阅
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}
