package controller

import (
	"encoding/json"
	"net/http"

	customerservice "github.com/reloop/portal/internal/customer/service"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
	"github.com/reloop/portal/internal/middleware"
)

type CustomerController struct {
	customerService customerservice.CustomerService
}

func NewCustomerController(customerService customerservice.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

func (c *CustomerController) Dashboard(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	res, err := c.customerService.Dashboard(r.Context(), token)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func (c *CustomerController) Profile(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	res, err := c.customerService.Profile(r.Context(), token)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func (c *CustomerController) RedeemOptions(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	res, err := c.customerService.RedeemOptions(r.Context(), token)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func (c *CustomerController) Redeem(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	var req dto.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return customerrors.ErrInvalidRedeemAmount
	}

	res, err := c.customerService.Redeem(r.Context(), token, req)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func (c *CustomerController) Transactions(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	res, err := c.customerService.Transactions(r.Context(), token)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func accessToken(r *http.Request) (string, error) {
	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok || claims.AccessToken == "" {
		return "", customerrors.ErrUnauthorized
	}
	return claims.AccessToken, nil
}
