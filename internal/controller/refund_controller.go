// FILE: internal/controller/refund_controller.go
package controller

import (
	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/pkg/serverutils"
	"culqi-payments-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRefundController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByTransaction(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type refundController struct {
	refundService service.IRefundService
}

func NewRefundController(refundService service.IRefundService) IRefundController {
	return &refundController{
		refundService: refundService,
	}
}

func (c *refundController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/refund/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("transaction/:transactionId", c.ListByTransaction)
	h.Get(":id", c.Show)
	h.Post(":id/cancel", c.Cancel)
}

func (c *refundController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if req.RequestedBy == "" {
		if userId, ok := ctx.Locals("userId").(string); ok {
			req.RequestedBy = userId
		}
	}

	res, err := c.refundService.CreateRefund(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund processed", res))
}

func (c *refundController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refund id")
	}

	res, err := c.refundService.GetRefund(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get refund", res))
}

func (c *refundController) ListByTransaction(ctx *fiber.Ctx) error {
	txId, err := uuid.Parse(ctx.Params("transactionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	res, err := c.refundService.ListByTransaction(ctx.Context(), txId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list refunds", res))
}

func (c *refundController) Cancel(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refund id")
	}

	res, err := c.refundService.CancelRefund(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund cancelled", res))
}
