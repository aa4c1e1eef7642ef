package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// 单张商品图上限 10MB，ML 侧限制
const maxPictureSize = 10 << 20

// ProductController 商品控制器
type ProductController struct {
	svc *service.ProductService
}

// NewProductController 创建商品控制器
func NewProductController(svc *service.ProductService) *ProductController {
	return &ProductController{svc: svc}
}

// List 商品列表
// GET /api/v1/products
func (c *ProductController) List(ctx *gin.Context) {
	var req dto.ProductListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.ProductFilter{
		Status:   req.Status,
		Keyword:  req.Keyword,
		LowStock: req.LowStock,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.AccountID > 0 {
		filter.AccountIDs = []int64{req.AccountID}
	}

	products, total, err := c.svc.ListProducts(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  products,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// GetByID 商品详情
// GET /api/v1/products/:id
func (c *ProductController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	product, err := c.svc.GetProduct(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": product})
}

// UpdatePrice 改价
// PUT /api/v1/products/:id/price
func (c *ProductController) UpdatePrice(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.PriceUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdatePrice(ctx, middleware.GetUserID(ctx), id, req.Price); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "价格已更新"})
}

// UpdateStock 改库存
// PUT /api/v1/products/:id/stock
func (c *ProductController) UpdateStock(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.StockUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateStock(ctx, middleware.GetUserID(ctx), id, req.Quantity); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "库存已更新"})
}

// UpdateStatus 上下架
// PUT /api/v1/products/:id/status
func (c *ProductController) UpdateStatus(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active paused"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateStatus(ctx, middleware.GetUserID(ctx), id, req.Status); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "状态已更新"})
}

// UpdateDescription 改描述
// PUT /api/v1/products/:id/description
func (c *ProductController) UpdateDescription(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.DescriptionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateDescription(ctx, middleware.GetUserID(ctx), id, req.PlainText); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "描述已更新"})
}

// AddPicture 上传商品图
// POST /api/v1/products/:id/pictures
func (c *ProductController) AddPicture(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 file 文件字段"})
		return
	}
	if fileHeader.Size > maxPictureSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "图片不能超过 10MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	url, err := c.svc.AddPicture(ctx, middleware.GetUserID(ctx), id, data, fileHeader.Filename)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}, "message": "图片已上传"})
}
