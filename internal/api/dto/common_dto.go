package dto

// PageResult 通用分页返回
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// IDRequest 通用 ID 请求
type IDRequest struct {
	ID int64 `uri:"id" binding:"required"`
}
