// FILE: internal/controller/payment_controller.go
package controller

import (
	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/pkg/serverutils"
	"culqi-payments-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	CreateCharge(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ShowByReference(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	transactionService service.ITransactionService
	webhookService     service.IWebhookService
}

func NewPaymentController(transactionService service.ITransactionService, webhookService service.IWebhookService) IPaymentController {
	return &paymentController{
		transactionService: transactionService,
		webhookService:     webhookService,
	}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment/v1")

	// The webhook authenticates through the signature header, never JWT.
	h.Post("webhook/culqi", c.Webhook)

	h.Use(serverutils.JwtMiddleware)
	h.Post("charges", c.CreateCharge)
	h.Get("charges", c.List)
	h.Get("charges/reference/:reference", c.ShowByReference)
	h.Get("charges/:id", c.Show)
}

func (c *paymentController) CreateCharge(ctx *fiber.Ctx) error {
	var req dto.CreateChargeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.transactionService.CreateCharge(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Charge processed", res))
}

func (c *paymentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	res, err := c.transactionService.GetTransaction(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get transaction", res))
}

func (c *paymentController) ShowByReference(ctx *fiber.Ctx) error {
	res, err := c.transactionService.GetByReference(ctx.Context(), ctx.Params("reference"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get transaction", res))
}

func (c *paymentController) List(ctx *fiber.Ctx) error {
	var q dto.TransactionListQuery
	if err := ctx.QueryParser(&q); err != nil {
		return err
	}

	res, err := c.transactionService.List(ctx.Context(), &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list transactions", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	signature := ctx.Get("X-Culqi-Signature")

	ack, err := c.webhookService.HandleCulqiWebhook(ctx.Context(), ctx.Body(), signature)
	if err != nil {
		return err
	}
	return ctx.JSON(ack)
}
