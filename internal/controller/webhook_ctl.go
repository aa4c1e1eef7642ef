package controller

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
	"meli_hub_v1_202608/pkg/meli"
)

// WebhookController ML 通知入口
// ML 要求 500ms 内响应 200，否则重试；处理失败也回 200，靠定时任务兜底
type WebhookController struct {
	accountRepo repository.AccountRepository

	orderSvc    *service.OrderService
	productSvc  *service.ProductService
	questionSvc *service.QuestionService
	claimSvc    *service.ClaimService
	shipmentSvc *service.ShipmentService
	paymentSvc  *service.PaymentService
	invoiceSvc  *service.InvoiceService
}

// NewWebhookController 创建通知控制器
func NewWebhookController(
	accountRepo repository.AccountRepository,
	orderSvc *service.OrderService,
	productSvc *service.ProductService,
	questionSvc *service.QuestionService,
	claimSvc *service.ClaimService,
	shipmentSvc *service.ShipmentService,
	paymentSvc *service.PaymentService,
	invoiceSvc *service.InvoiceService,
) *WebhookController {
	return &WebhookController{
		accountRepo: accountRepo,
		orderSvc:    orderSvc,
		productSvc:  productSvc,
		questionSvc: questionSvc,
		claimSvc:    claimSvc,
		shipmentSvc: shipmentSvc,
		paymentSvc:  paymentSvc,
		invoiceSvc:  invoiceSvc,
	}
}

// Receive 接收 ML 通知
// POST /webhooks/meli
func (c *WebhookController) Receive(ctx *gin.Context) {
	var notification meli.NotificationDTO
	if err := ctx.ShouldBindJSON(&notification); err != nil {
		// 非法通知体也回 200，避免 ML 无意义重试
		ctx.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	account, err := c.accountRepo.GetByMeliUserID(ctx, notification.UserID)
	if err != nil {
		log.Printf("[Webhook] 未知 ML 用户 %d topic=%s", notification.UserID, notification.Topic)
		ctx.JSON(http.StatusOK, gin.H{"message": "unknown user"})
		return
	}

	if err := c.dispatch(ctx, account, &notification); err != nil {
		log.Printf("[Webhook] 处理失败 topic=%s resource=%s: %v",
			notification.Topic, notification.Resource, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// dispatch 按 topic 路由到对应同步服务
func (c *WebhookController) dispatch(ctx *gin.Context, account *model.Account, n *meli.NotificationDTO) error {
	switch n.Topic {
	case "orders_v2", "orders":
		id, err := resourceNumericID(n.Resource)
		if err != nil {
			return err
		}
		return c.orderSvc.SyncOneByMeliID(ctx, account, id)

	case "items":
		// /items/MLB123456 — item ID 带站点前缀，不是纯数字
		return c.productSvc.SyncOne(ctx, account, resourceTailID(n.Resource))

	case "questions":
		id, err := resourceNumericID(n.Resource)
		if err != nil {
			return err
		}
		return c.questionSvc.SyncOneByMeliID(ctx, account, id)

	case "shipments":
		id, err := resourceNumericID(n.Resource)
		if err != nil {
			return err
		}
		return c.shipmentSvc.SyncShipment(ctx, account, id)

	case "payments":
		id, err := resourceNumericID(n.Resource)
		if err != nil {
			return err
		}
		return c.paymentSvc.SyncOneByMpID(ctx, account, id)

	case "claims":
		// claim 通知不带可直查的详情资源，整体拉一轮
		_, err := c.claimSvc.SyncClaims(ctx, account)
		return err

	case "invoices":
		id, err := resourceNumericID(n.Resource)
		if err != nil {
			return err
		}
		return c.invoiceSvc.SyncOrderInvoice(ctx, account, id)

	default:
		log.Printf("[Webhook] 未订阅的 topic: %s", n.Topic)
		return nil
	}
}

// resourceTailID 取资源路径最后一段，如 "/items/MLB123" -> "MLB123"
func resourceTailID(resource string) string {
	parts := strings.Split(strings.Trim(resource, "/"), "/")
	return parts[len(parts)-1]
}

// resourceNumericID 取资源路径最后一段并转数字
func resourceNumericID(resource string) (int64, error) {
	return strconv.ParseInt(resourceTailID(resource), 10, 64)
}
