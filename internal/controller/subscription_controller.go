// FILE: internal/controller/subscription_controller.go
package controller

import (
	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/pkg/serverutils"
	"culqi-payments-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	Enroll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByCustomer(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Reactivate(ctx *fiber.Ctx) error
	ChangePlan(ctx *fiber.Ctx) error
	PreviewProration(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	subscriptionService service.ISubscriptionService
}

func NewSubscriptionController(subscriptionService service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{
		subscriptionService: subscriptionService,
	}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscription/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Enroll)
	h.Get("customer/:customerId", c.ListByCustomer)
	h.Get(":id", c.Show)
	h.Post(":id/cancel", c.Cancel)
	h.Post(":id/reactivate", c.Reactivate)
	h.Put(":id/plan", c.ChangePlan)
	h.Get(":id/plan/:planId/proration", c.PreviewProration)
}

func (c *subscriptionController) Enroll(ctx *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.subscriptionService.Enroll(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription created", res))
}

func (c *subscriptionController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	res, err := c.subscriptionService.GetSubscription(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get subscription", res))
}

func (c *subscriptionController) ListByCustomer(ctx *fiber.Ctx) error {
	customerId, err := uuid.Parse(ctx.Params("customerId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}

	res, err := c.subscriptionService.ListByCustomer(ctx.Context(), customerId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list subscriptions", res))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	var req dto.CancelSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.subscriptionService.Cancel(ctx.Context(), id, req.AtPeriodEnd, req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}

func (c *subscriptionController) Reactivate(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	res, err := c.subscriptionService.Reactivate(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription reactivated", res))
}

func (c *subscriptionController) ChangePlan(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	var req dto.ChangePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.subscriptionService.ChangePlan(ctx.Context(), id, req.NewPlanId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan changed", res))
}

func (c *subscriptionController) PreviewProration(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}
	planId, err := uuid.Parse(ctx.Params("planId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid plan id")
	}

	res, err := c.subscriptionService.PreviewProration(ctx.Context(), id, planId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Proration preview", res))
}
