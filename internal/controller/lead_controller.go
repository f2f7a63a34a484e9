package controller

import (
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILeadController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type leadController struct {
	leadService service.ILeadService
}

func NewLeadController(leadService service.ILeadService) ILeadController {
	return &leadController{
		leadService: leadService,
	}
}

func (c *leadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/lead/v1")
	h.Get("", c.List)
}

func (c *leadController) List(ctx *fiber.Ctx) error {
	res, err := c.leadService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list leads", res))
}
