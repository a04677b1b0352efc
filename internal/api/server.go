//
// Copyright 2024 Bytedance Ltd. and/or its affiliates
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/application"
	"github.com/bytedance/promokit/internal/domain"
)

type Server struct {
	coupons   *application.CouponService
	sales     *application.FlashSaleService
	giftCards *application.GiftCardService
	loyalty   *application.LoyaltyService
	preorders *application.PreOrderService
	referrals *application.ReferralService
	checkout  *application.CheckoutService
	logger    logr.Logger
}

func NewServer(
	coupons *application.CouponService,
	sales *application.FlashSaleService,
	giftCards *application.GiftCardService,
	loyalty *application.LoyaltyService,
	preorders *application.PreOrderService,
	referrals *application.ReferralService,
	checkout *application.CheckoutService,
	logger logr.Logger,
) *Server {
	return &Server{
		coupons:   coupons,
		sales:     sales,
		giftCards: giftCards,
		loyalty:   loyalty,
		preorders: preorders,
		referrals: referrals,
		checkout:  checkout,
		logger:    logger.WithName("api"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", s.createCoupon)
			r.Get("/", s.listCoupons)
			r.Get("/{id}", s.getCoupon)
			r.Patch("/{id}", s.updateCoupon)
			r.Delete("/{id}", s.deleteCoupon)
			r.Post("/validate", s.validateCoupon)
			r.Post("/redeem", s.redeemCoupon)
		})
		r.Route("/flash-sales", func(r chi.Router) {
			r.Post("/", s.createSale)
			r.Get("/active", s.listActiveSales)
			r.Get("/{id}", s.getSale)
			r.Delete("/{id}", s.deactivateSale)
			r.Post("/{id}/products", s.addSaleProduct)
			r.Delete("/{id}/products/{productID}", s.removeSaleProduct)
			r.Post("/{id}/products/{productID}/reserve", s.reserveUnits)
			r.Post("/{id}/products/{productID}/release", s.releaseUnits)
		})
		r.Route("/gift-cards", func(r chi.Router) {
			r.Post("/", s.purchaseGiftCard)
			r.Get("/{code}", s.getGiftCard)
			r.Post("/{code}/assign", s.assignGiftCard)
			r.Post("/{code}/redeem", s.redeemGiftCard)
			r.Post("/{code}/quote", s.quoteGiftCard)
		})
		r.Route("/loyalty", func(r chi.Router) {
			r.Get("/{userID}", s.getLoyaltyAccount)
			r.Get("/{userID}/history", s.loyaltyHistory)
			r.Post("/{userID}/adjust", s.adjustLoyalty)
		})
		r.Route("/preorder-campaigns", func(r chi.Router) {
			r.Post("/", s.createCampaign)
			r.Get("/open", s.listOpenCampaigns)
			r.Get("/{id}", s.getCampaign)
			r.Delete("/{id}", s.deactivateCampaign)
		})
		r.Route("/preorders", func(r chi.Router) {
			r.Post("/", s.createPreOrder)
			r.Get("/{id}", s.getPreOrder)
			r.Post("/{id}/deposit", s.payDeposit)
			r.Post("/{id}/ready", s.markReadyToShip)
			r.Post("/{id}/convert", s.convertPreOrder)
			r.Post("/{id}/cancel", s.cancelPreOrder)
		})
		r.Route("/referrals", func(r chi.Router) {
			r.Post("/codes/{userID}", s.getOrCreateReferralCode)
			r.Post("/apply", s.applyReferralCode)
			r.Get("/by-referrer/{userID}", s.listReferrals)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", s.quoteCheckout)
			r.Post("/settle", s.settleCheckout)
		})
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(err, "write response failed")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientPoints):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrExpired):
		status = http.StatusBadRequest
	default:
		s.logger.Error(err, "request failed")
		status = http.StatusInternalServerError
		err = errors.New("internal error")
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrValidation
	}
	return nil
}
