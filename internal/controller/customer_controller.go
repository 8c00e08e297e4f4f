// FILE: internal/controller/customer_controller.go
package controller

import (
	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/pkg/serverutils"
	"culqi-payments-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICustomerController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	AddCard(ctx *fiber.Ctx) error
	ListCards(ctx *fiber.Ctx) error
	RemoveCard(ctx *fiber.Ctx) error
}

type customerController struct {
	customerService service.ICustomerService
}

func NewCustomerController(customerService service.ICustomerService) ICustomerController {
	return &customerController{
		customerService: customerService,
	}
}

func (c *customerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/customer/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post("cards", c.AddCard)
	h.Get(":id/cards", c.ListCards)
	h.Delete(":id/cards/:cardId", c.RemoveCard)
}

func (c *customerController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.customerService.CreateCustomer(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Customer created", res))
}

func (c *customerController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}

	res, err := c.customerService.GetCustomer(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get customer", res))
}

func (c *customerController) AddCard(ctx *fiber.Ctx) error {
	var req dto.CreateCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.customerService.AddCard(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Card stored", res))
}

func (c *customerController) ListCards(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}

	res, err := c.customerService.ListCards(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list cards", res))
}

func (c *customerController) RemoveCard(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}
	cardId, err := uuid.Parse(ctx.Params("cardId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid card id")
	}

	if err := c.customerService.RemoveCard(ctx.Context(), id, cardId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Card removed", nil))
}
