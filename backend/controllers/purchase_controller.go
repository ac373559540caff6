package controllers

import (
	"log"

	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PurchaseController struct {
	Purchases *services.PurchaseService
	Logger    *log.Logger
}

func NewPurchaseController(purchases *services.PurchaseService, logger *log.Logger) *PurchaseController {
	return &PurchaseController{Purchases: purchases, Logger: logger}
}

type VerifyRequest struct {
	Reference string `json:"reference" validate:"required,max=64"`
}

// Checkout godoc
// @Summary Start a course purchase
// @Description Opens a pending purchase and returns its payment reference. Free courses are granted immediately.
// @Tags purchases
// @Produce json
// @Param id path int true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/checkout [post]
func (pc *PurchaseController) Checkout(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	purchase, err := pc.Purchases.Checkout(currentUser(c).ID, courseID)
	if err != nil {
		return respondError(c, pc.Logger, err)
	}
	return utils.Created(c, purchase)
}

// Verify godoc
// @Summary Confirm a payment
// @Tags purchases
// @Accept json
// @Produce json
// @Param input body VerifyRequest true "Payment reference"
// @Success 200 {object} utils.SuccessResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /purchases/verify [post]
func (pc *PurchaseController) Verify(c *fiber.Ctx) error {
	var input VerifyRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	purchase, err := pc.Purchases.Verify(c.UserContext(), currentUser(c).ID, input.Reference)
	if err != nil {
		return respondError(c, pc.Logger, err)
	}
	return utils.OK(c, "Purchase completed", purchase)
}

func (pc *PurchaseController) ListPurchases(c *fiber.Ctx) error {
	purchases, err := pc.Purchases.List(currentUser(c).ID)
	if err != nil {
		return respondError(c, pc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, purchases)
}
