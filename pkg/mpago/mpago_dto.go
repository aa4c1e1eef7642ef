package mpago

// ==========================================
// DTO: 用于接收 Mercado Pago API 返回的原始 JSON
// ==========================================

// PaymentSearchResp /v1/payments/search 响应
type PaymentSearchResp struct {
	Results []PaymentDTO `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// PaymentDTO 单笔收款
type PaymentDTO struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	PaymentMethodID   string  `json:"payment_method_id"`
	PaymentTypeID     string  `json:"payment_type_id"`
	Installments      int     `json:"installments"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
	DateCreated       string  `json:"date_created"`
	DateApproved      string  `json:"date_approved"`
	MoneyReleaseDate  string  `json:"money_release_date"`

	// 订单关联（市场收款）
	Order struct {
		ID   int64  `json:"id"`
		Type string `json:"type"` // mercadolibre / mercadopago
	} `json:"order"`

	Payer struct {
		ID    int64  `json:"id,string"`
		Email string `json:"email"`
	} `json:"payer"`

	TransactionDetails struct {
		NetReceivedAmount float64 `json:"net_received_amount"`
		TotalPaidAmount   float64 `json:"total_paid_amount"`
	} `json:"transaction_details"`

	FeeDetails []struct {
		Type   string  `json:"type"` // mercadopago_fee
		Amount float64 `json:"amount"`
	} `json:"fee_details"`

	TransactionAmountRefunded float64 `json:"transaction_amount_refunded"`
}

// TotalFee 累加所有手续费
func (p *PaymentDTO) TotalFee() float64 {
	var total float64
	for _, f := range p.FeeDetails {
		total += f.Amount
	}
	return total
}

// RefundDTO 退款响应
type RefundDTO struct {
	ID          int64   `json:"id"`
	PaymentID   int64   `json:"payment_id"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	DateCreated string  `json:"date_created"`
}

// SubscriptionSearchResp /preapproval/search 响应
type SubscriptionSearchResp struct {
	Results []SubscriptionDTO `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// SubscriptionDTO 订阅（preapproval）
type SubscriptionDTO struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	Reason          string `json:"reason"`
	PayerID         int64  `json:"payer_id"`
	PayerEmail      string `json:"payer_email"`
	NextPaymentDate string `json:"next_payment_date"`
	DateCreated     string `json:"date_created"`

	AutoRecurring struct {
		FrequencyType     string  `json:"frequency_type"`
		Frequency         int     `json:"frequency"`
		TransactionAmount float64 `json:"transaction_amount"`
		CurrencyID        string  `json:"currency_id"`
	} `json:"auto_recurring"`
}
