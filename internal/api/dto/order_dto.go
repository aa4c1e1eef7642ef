package dto

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	AccountID int64  `form:"account_id"`
	Status    string `form:"status"`
	Keyword   string `form:"keyword"`
	From      string `form:"from"` // 2006-01-02
	To        string `form:"to"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// OrderNoteRequest 卖家备注请求
type OrderNoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	AccountID int64  `form:"account_id"`
	Status    string `form:"status"`
	Keyword   string `form:"keyword"`
	LowStock  bool   `form:"low_stock"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// PriceUpdateRequest 改价请求
type PriceUpdateRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

// StockUpdateRequest 改库存请求
type StockUpdateRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// DescriptionUpdateRequest 改描述请求
type DescriptionUpdateRequest struct {
	PlainText string `json:"plain_text" binding:"required"`
}

// AnswerRequest 回答咨询请求
type AnswerRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// MessageSendRequest 发送站内信请求
type MessageSendRequest struct {
	Text string `json:"text" binding:"required,max=350"`
}

// ClaimReplyRequest 纠纷回应请求
type ClaimReplyRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// RefundRequest 退款请求 (金额为元，0 表示全额)
type RefundRequest struct {
	Amount float64 `json:"amount" binding:"min=0"`
}
