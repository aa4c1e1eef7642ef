package meli

// ==========================================
// DTO: 用于接收 ML API 返回的原始 JSON 数据
// ==========================================

// BaseURL ML 开放平台接口域名（全站点共用）
const BaseURL = "https://api.mercadolibre.com"

// TokenResp OAuth token 响应
type TokenResp struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // 秒，ML 固定 21600 (6小时)
	Scope        string `json:"scope"`
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error,omitempty"`
}

// PagingDTO 通用分页结构
type PagingDTO struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ==================== 用户与信誉 ====================

// UserDTO /users/me 响应 (节选常用字段)
type UserDTO struct {
	ID               int64          `json:"id"`
	Nickname         string         `json:"nickname"`
	Email            string         `json:"email"`
	SiteID           string         `json:"site_id"`
	CountryID        string         `json:"country_id"`
	SellerReputation *ReputationDTO `json:"seller_reputation"`
}

// ReputationDTO 卖家信誉
type ReputationDTO struct {
	LevelID           string `json:"level_id"`            // 5_green ... 1_red
	PowerSellerStatus string `json:"power_seller_status"` // gold / platinum
	Transactions      struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Canceled  int `json:"canceled"`
		Ratings   struct {
			Positive float64 `json:"positive"`
			Neutral  float64 `json:"neutral"`
			Negative float64 `json:"negative"`
		} `json:"ratings"`
	} `json:"transactions"`
}

// ==================== 订单 ====================

// OrderSearchResp /orders/search 响应
type OrderSearchResp struct {
	Results []OrderDTO `json:"results"`
	Paging  PagingDTO  `json:"paging"`
}

// OrderDTO 单笔订单
type OrderDTO struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	StatusDetail string  `json:"status_detail"`
	DateCreated  string  `json:"date_created"` // ISO8601
	DateClosed   string  `json:"date_closed"`
	TotalAmount  float64 `json:"total_amount"`
	PaidAmount   float64 `json:"paid_amount"`
	CurrencyID   string  `json:"currency_id"`
	PackID       int64   `json:"pack_id"`

	Buyer struct {
		ID       int64  `json:"id"`
		Nickname string `json:"nickname"`
	} `json:"buyer"`

	OrderItems []OrderItemDTO `json:"order_items"`

	Shipping struct {
		ID int64 `json:"id"`
	} `json:"shipping"`
}

// OrderItemDTO 订单行
type OrderItemDTO struct {
	Item struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		CategoryID  string `json:"category_id"`
		VariationID int64  `json:"variation_id"`
		SellerSKU   string `json:"seller_sku"`
	} `json:"item"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	FullUnitPrice float64 `json:"full_unit_price"`
	SaleFee       float64 `json:"sale_fee"`
	CurrencyID    string  `json:"currency_id"`
}

// ==================== 商品 ====================

// ItemSearchResp /users/:id/items/search 响应 (仅返回 id 列表)
type ItemSearchResp struct {
	Results []string  `json:"results"`
	Paging  PagingDTO `json:"paging"`
}

// ItemDTO /items/:id 响应 (节选常用字段)
type ItemDTO struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	CategoryID        string   `json:"category_id"`
	Price             float64  `json:"price"`
	OriginalPrice     float64  `json:"original_price"`
	CurrencyID        string   `json:"currency_id"`
	AvailableQuantity int      `json:"available_quantity"`
	SoldQuantity      int      `json:"sold_quantity"`
	Status            string   `json:"status"`
	SubStatus         []string `json:"sub_status"`
	Permalink         string   `json:"permalink"`
	Thumbnail         string   `json:"thumbnail"`
	CatalogListing    bool     `json:"catalog_listing"`
	CatalogProductID  string   `json:"catalog_product_id"`
	Tags              []string `json:"tags"`
	Health            float64  `json:"health"`
	LastUpdated       string   `json:"last_updated"`

	Pictures []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"pictures"`
}

// ==================== 咨询 ====================

// QuestionSearchResp /questions/search 响应
type QuestionSearchResp struct {
	Total     int           `json:"total"`
	Questions []QuestionDTO `json:"questions"`
}

// QuestionDTO 单条咨询
type QuestionDTO struct {
	ID          int64  `json:"id"`
	ItemID      string `json:"item_id"`
	SellerID    int64  `json:"seller_id"`
	Text        string `json:"text"`
	Status      string `json:"status"`
	DateCreated string `json:"date_created"`
	From        struct {
		ID int64 `json:"id"`
	} `json:"from"`
	Answer *struct {
		Text        string `json:"text"`
		Status      string `json:"status"`
		DateCreated string `json:"date_created"`
	} `json:"answer"`
}

// ==================== 纠纷 ====================

// ClaimSearchResp /post-purchase/v1/claims/search 响应
type ClaimSearchResp struct {
	Data   []ClaimDTO `json:"data"`
	Paging PagingDTO  `json:"paging"`
}

// ClaimDTO 单条纠纷
type ClaimDTO struct {
	ID          int64  `json:"id"`
	ResourceID  int64  `json:"resource_id"` // 关联 order id
	Resource    string `json:"resource"`    // order / shipment
	Type        string `json:"type"`
	Stage       string `json:"stage"`
	Status      string `json:"status"`
	ReasonID    string `json:"reason_id"`
	DateCreated string `json:"date_created"`
}

// ==================== 发货 ====================

// ShipmentDTO /shipments/:id 响应 (节选)
type ShipmentDTO struct {
	ID           int64  `json:"id"`
	OrderID      int64  `json:"order_id"`
	Status       string `json:"status"`
	SubStatus    string `json:"substatus"`
	LogisticType string `json:"logistic_type"`

	TrackingNumber string `json:"tracking_number"`
	TrackingMethod string `json:"tracking_method"`

	ShippingOption struct {
		Cost                  float64 `json:"cost"`
		CurrencyID            string  `json:"currency_id"`
		EstimatedDeliveryTime struct {
			Date string `json:"date"`
		} `json:"estimated_delivery_time"`
	} `json:"shipping_option"`

	ReceiverAddress map[string]interface{} `json:"receiver_address"`

	DateCreated   string `json:"date_created"`
	DateShipped   string `json:"date_first_printed"`
	DateDelivered string `json:"date_delivered"`
}

// ==================== 访问量 ====================

// VisitsDTO /users/:id/items_visits/time_window 响应
type VisitsDTO struct {
	UserID      int64  `json:"user_id"`
	TotalVisits int64  `json:"total_visits"`
	Last        int    `json:"last"`
	Unit        string `json:"unit"`
	Results     []struct {
		Date  string `json:"date"`
		Total int64  `json:"total"`
	} `json:"results"`
}

// ==================== 目录 (Buy Box) ====================

// PriceToWinDTO /items/:id/price_to_win 响应
type PriceToWinDTO struct {
	ItemID           string  `json:"item_id"`
	CatalogProductID string  `json:"catalog_product_id"`
	Status           string  `json:"status"` // winning / competing / sharing_first_place / listed
	CurrentPrice     float64 `json:"current_price"`
	PriceToWin       float64 `json:"price_to_win"`
	CurrencyID       string  `json:"currency_id"`

	Boosts []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Description string `json:"description"`
	} `json:"boosts"`

	Competitors int `json:"competitors_sharing_first_place"`
}

// ==================== 发票 ====================

// InvoiceListResp 发票列表响应
type InvoiceListResp struct {
	Results []InvoiceDTO `json:"results"`
	Paging  PagingDTO    `json:"paging"`
}

// InvoiceDTO 电子发票 (NF-e)
type InvoiceDTO struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	InvoiceNumber   int64   `json:"invoice_number"`
	InvoiceSeries   string  `json:"invoice_series"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	TaxAmount       float64 `json:"tax_amount"`
	CurrencyID      string  `json:"currency_id"`
	XmlLocation     string  `json:"xml_location"`
	PdfLocation     string  `json:"pdf_location"`
	RejectionReason string  `json:"rejection_reason"`
	AuthorizedAt    string  `json:"authorization_date"`
}

// ==================== 消息 ====================

// MessagePackResp /messages/packs/... 响应
type MessagePackResp struct {
	Messages []MessageDTO `json:"messages"`
	Paging   PagingDTO    `json:"paging"`
}

// MessageDTO 单条消息
type MessageDTO struct {
	ID   string `json:"id"`
	From struct {
		UserID int64 `json:"user_id"`
	} `json:"from"`
	To struct {
		UserID int64 `json:"user_id"`
	} `json:"to"`
	Text struct {
		Plain string `json:"plain"`
	} `json:"text"`
	MessageDate struct {
		Created string `json:"created"`
	} `json:"message_date"`
}

// ==================== Webhook ====================

// NotificationDTO ML webhook 通知体
type NotificationDTO struct {
	ID       string `json:"_id"`
	Resource string `json:"resource"` // "/orders/2195160686" 等
	UserID   int64  `json:"user_id"`
	Topic    string `json:"topic"` // orders_v2 / items / questions / claims
	Attempts int    `json:"attempts"`
	Sent     string `json:"sent"`
	Received string `json:"received"`
}
