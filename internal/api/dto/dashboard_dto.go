package dto

// DashboardRequest 看板查询参数
// period: today / 7d / 15d / 30d / 60d / 90d / custom (custom 需携带 from/to，格式 2006-01-02)
type DashboardRequest struct {
	Period     string  `form:"period,default=7d"`
	From       string  `form:"from"`
	To         string  `form:"to"`
	AccountIDs []int64 `form:"account_ids"` // 留空则聚合该用户全部已连接账号
}

// DashboardResponse 跨账号聚合看板
type DashboardResponse struct {
	Summary      *DashboardSummary  `json:"summary"`
	SalesSeries  []SalesPoint       `json:"sales_series"`
	TopProducts  []TopProductItem   `json:"top_products"`
	Alerts       []Alert            `json:"alerts"`
	Reputation   *ReputationInfo    `json:"reputation,omitempty"`
	RecentOrders []RecentOrderItem  `json:"recent_orders"`
	Accounts     *AccountsBreakdown `json:"accounts"`
}

// DashboardSummary 核心指标卡
type DashboardSummary struct {
	TotalRevenue   float64 `json:"total_revenue"` // 元
	OrderCount     int64   `json:"order_count"`
	UnitsSold      int64   `json:"units_sold"`
	AvgTicket      float64 `json:"avg_ticket"`      // 客单价，订单数为 0 时为 0
	TotalVisits    int64   `json:"total_visits"`    // 商品访问量
	ConversionRate float64 `json:"conversion_rate"` // 订单数/访问量×100，访问量为 0 时为 0
}

// SalesPoint 销售折线图单点（日期升序）
type SalesPoint struct {
	Date    string  `json:"date"` // 2006-01-02
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// TopProductItem 热销商品条目
type TopProductItem struct {
	MeliItemID string  `json:"meli_item_id"`
	Title      string  `json:"title"`
	UnitsSold  int64   `json:"units_sold"`
	Revenue    float64 `json:"revenue"`
}

// Alert 运营告警
type Alert struct {
	Type     string `json:"type"`     // low_stock / unanswered_questions / pending_shipments / open_claims
	Severity string `json:"severity"` // warning / critical
	Count    int64  `json:"count"`
	Message  string `json:"message"`
}

// ReputationInfo 卖家信誉摘要
type ReputationInfo struct {
	AccountID      int64   `json:"account_id"`
	Level          string  `json:"level"` // 5_green ... 1_red
	PowerSeller    string  `json:"power_seller,omitempty"`
	RatingPositive float64 `json:"rating_positive"`
}

// RecentOrderItem 最近订单条目
type RecentOrderItem struct {
	ID          int64   `json:"id"`
	MeliOrderID int64   `json:"meli_order_id"`
	AccountID   int64   `json:"account_id"`
	BuyerNick   string  `json:"buyer_nick"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
	DateCreated string  `json:"date_created"`
}

// AccountsBreakdown 聚合覆盖范围
// 部分账号拉取失败不影响整体返回，失败账号列在 failed 中
type AccountsBreakdown struct {
	Included []AccountBrief `json:"included"`
	Failed   []AccountError `json:"failed"`
}

// AccountBrief 账号摘要，revenue 供按账号分布的环形图使用
type AccountBrief struct {
	ID       int64   `json:"id"`
	Nickname string  `json:"nickname"`
	SiteID   string  `json:"site_id"`
	Revenue  float64 `json:"revenue"` // 元
}

// AccountError 账号级失败信息
type AccountError struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Reason   string `json:"reason"`
}
