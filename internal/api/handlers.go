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
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bytedance/promokit/internal/application"
	"github.com/bytedance/promokit/internal/domain"
)

// ---- coupons ----

type couponRequest struct {
	Code               string          `json:"code"`
	DiscountType       string          `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MinimumPurchase    decimal.Decimal `json:"minimum_purchase"`
	UsageLimit         int             `json:"usage_limit"`
	PerUserLimit       int             `json:"per_user_limit"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidTo            time.Time       `json:"valid_to"`
	ApplicableProducts []string        `json:"applicable_products"`
}

type couponView struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	DiscountType       string          `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MinimumPurchase    decimal.Decimal `json:"minimum_purchase"`
	UsageLimit         int             `json:"usage_limit"`
	PerUserLimit       int             `json:"per_user_limit"`
	UsageCount         int             `json:"usage_count"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidTo            time.Time       `json:"valid_to"`
	IsActive           bool            `json:"is_active"`
	ApplicableProducts []string        `json:"applicable_products,omitempty"`
}

func toCouponView(c *domain.Coupon) couponView {
	return couponView{
		ID:                 c.GetID(),
		Code:               c.Code,
		DiscountType:       string(c.DiscountType),
		DiscountValue:      c.DiscountValue,
		MinimumPurchase:    c.MinimumPurchase,
		UsageLimit:         c.UsageLimit,
		PerUserLimit:       c.PerUserLimit,
		UsageCount:         c.UsageCount,
		ValidFrom:          c.ValidFrom,
		ValidTo:            c.ValidTo,
		IsActive:           c.IsActive,
		ApplicableProducts: c.ApplicableProducts,
	}
}

func (s *Server) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.coupons.Create(r.Context(), domain.CouponSpec{
		Code:               req.Code,
		DiscountType:       domain.DiscountType(req.DiscountType),
		DiscountValue:      req.DiscountValue,
		MinimumPurchase:    req.MinimumPurchase,
		UsageLimit:         req.UsageLimit,
		PerUserLimit:       req.PerUserLimit,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
		ApplicableProducts: req.ApplicableProducts,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCouponView(c))
}

func (s *Server) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := s.coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCouponView(c))
}

func (s *Server) listCoupons(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	cs, err := s.coupons.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]couponView, 0, len(cs))
	for _, c := range cs {
		views = append(views, toCouponView(c))
	}
	s.writeJSON(w, http.StatusOK, views)
}

type couponUpdateRequest struct {
	DiscountValue   *decimal.Decimal `json:"discount_value"`
	MinimumPurchase *decimal.Decimal `json:"minimum_purchase"`
	UsageLimit      *int             `json:"usage_limit"`
	PerUserLimit    *int             `json:"per_user_limit"`
	ValidFrom       *time.Time       `json:"valid_from"`
	ValidTo         *time.Time       `json:"valid_to"`
	IsActive        *bool            `json:"is_active"`
}

func (s *Server) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponUpdateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.coupons.Update(r.Context(), chi.URLParam(r, "id"), domain.CouponUpdate{
		DiscountValue:   req.DiscountValue,
		MinimumPurchase: req.MinimumPurchase,
		UsageLimit:      req.UsageLimit,
		PerUserLimit:    req.PerUserLimit,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
		IsActive:        req.IsActive,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCouponView(c))
}

func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := s.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

type couponApplyRequest struct {
	Code        string          `json:"code"`
	UserID      string          `json:"user_id"`
	OrderID     string          `json:"order_id"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	ProductIDs  []string        `json:"product_ids"`
}

func (s *Server) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponApplyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	q, err := s.coupons.Validate(r.Context(), req.Code, req.UserID, req.OrderAmount, req.ProductIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"coupon":   toCouponView(q.Coupon),
		"discount": q.Discount,
	})
}

func (s *Server) redeemCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponApplyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	discount, err := s.coupons.Redeem(r.Context(), req.Code, req.UserID, req.OrderID, req.OrderAmount, req.ProductIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"discount": discount})
}

// ---- flash sales ----

type saleRequest struct {
	Name    string    `json:"name"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type saleView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	StartAt  time.Time         `json:"start_at"`
	EndAt    time.Time         `json:"end_at"`
	IsActive bool              `json:"is_active"`
	Products []saleProductView `json:"products"`
}

type saleProductView struct {
	ProductID    string          `json:"product_id"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	StockLimit   int             `json:"stock_limit"`
	SoldQuantity int             `json:"sold_quantity"`
}

func toSaleView(sale *domain.FlashSale) saleView {
	v := saleView{
		ID:       sale.GetID(),
		Name:     sale.Name,
		StartAt:  sale.StartAt,
		EndAt:    sale.EndAt,
		IsActive: sale.IsActive,
		Products: []saleProductView{},
	}
	for _, p := range sale.Products {
		v.Products = append(v.Products, saleProductView{
			ProductID:    p.ProductID,
			SalePrice:    p.SalePrice,
			StockLimit:   p.StockLimit,
			SoldQuantity: p.SoldQuantity,
		})
	}
	return v
}

func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sale, err := s.sales.Create(r.Context(), req.Name, req.StartAt, req.EndAt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSaleView(sale))
}

func (s *Server) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSaleView(sale))
}

func (s *Server) listActiveSales(w http.ResponseWriter, r *http.Request) {
	views, err := s.sales.ListActive(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) deactivateSale(w http.ResponseWriter, r *http.Request) {
	if err := s.sales.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

type saleProductRequest struct {
	ProductID  string          `json:"product_id"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	StockLimit int             `json:"stock_limit"`
}

func (s *Server) addSaleProduct(w http.ResponseWriter, r *http.Request) {
	var req saleProductRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.sales.AddProduct(r.Context(), chi.URLParam(r, "id"), req.ProductID, req.SalePrice, req.StockLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saleProductView{
		ProductID:    p.ProductID,
		SalePrice:    p.SalePrice,
		StockLimit:   p.StockLimit,
		SoldQuantity: p.SoldQuantity,
	})
}

func (s *Server) removeSaleProduct(w http.ResponseWriter, r *http.Request) {
	err := s.sales.RemoveProduct(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) reserveUnits(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	err := s.sales.Reserve(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}

func (s *Server) releaseUnits(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	err := s.sales.Release(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}

// ---- gift cards ----

type giftCardView struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Balance      decimal.Decimal `json:"balance"`
	InitialValue decimal.Decimal `json:"initial_value"`
	PurchasedBy  string          `json:"purchased_by"`
	AssignedTo   string          `json:"assigned_to,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Status       string          `json:"status"`
}

func toGiftCardView(g *domain.GiftCard) giftCardView {
	return giftCardView{
		ID:           g.GetID(),
		Code:         g.Code,
		Balance:      g.Balance,
		InitialValue: g.InitialValue,
		PurchasedBy:  g.PurchasedBy,
		AssignedTo:   g.AssignedTo,
		ExpiresAt:    g.ExpiresAt,
		Status:       string(g.Status),
	}
}

type purchaseGiftCardRequest struct {
	PurchasedBy    string          `json:"purchased_by"`
	Amount         decimal.Decimal `json:"amount"`
	AssignedTo     string          `json:"assigned_to"`
	RecipientEmail string          `json:"recipient_email"`
}

func (s *Server) purchaseGiftCard(w http.ResponseWriter, r *http.Request) {
	var req purchaseGiftCardRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	card, err := s.giftCards.Purchase(r.Context(), application.PurchaseGiftCardCmd{
		PurchasedBy:    req.PurchasedBy,
		Amount:         req.Amount,
		AssignedTo:     req.AssignedTo,
		RecipientEmail: req.RecipientEmail,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toGiftCardView(card))
}

func (s *Server) getGiftCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.giftCards.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toGiftCardView(card))
}

type assignGiftCardRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) assignGiftCard(w http.ResponseWriter, r *http.Request) {
	var req assignGiftCardRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	card, err := s.giftCards.Assign(r.Context(), chi.URLParam(r, "code"), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toGiftCardView(card))
}

type redeemGiftCardRequest struct {
	UserID  string          `json:"user_id"`
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

func (s *Server) redeemGiftCard(w http.ResponseWriter, r *http.Request) {
	var req redeemGiftCardRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	applied, err := s.giftCards.Redeem(r.Context(), chi.URLParam(r, "code"), req.UserID, req.OrderID, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"applied": applied})
}

type quoteGiftCardRequest struct {
	OrderAmount decimal.Decimal `json:"order_amount"`
}

func (s *Server) quoteGiftCard(w http.ResponseWriter, r *http.Request) {
	var req quoteGiftCardRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	discount, err := s.giftCards.CalculateDiscount(r.Context(), chi.URLParam(r, "code"), req.OrderAmount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"discount": discount})
}

// ---- loyalty ----

type loyaltyAccountView struct {
	UserID         string `json:"user_id"`
	PointsBalance  int64  `json:"points_balance"`
	LifetimePoints int64  `json:"lifetime_points"`
	Tier           string `json:"tier,omitempty"`
}

func (s *Server) getLoyaltyAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.loyalty.GetAccount(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loyaltyAccountView{
		UserID:         acc.UserID,
		PointsBalance:  acc.PointsBalance,
		LifetimePoints: acc.LifetimePoints,
		Tier:           acc.Tier,
	})
}

type loyaltyTxnView struct {
	Type    string    `json:"type"`
	Points  int64     `json:"points"`
	OrderID string    `json:"order_id,omitempty"`
	Note    string    `json:"note,omitempty"`
	At      time.Time `json:"at"`
}

func (s *Server) loyaltyHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	txns, err := s.loyalty.History(r.Context(), chi.URLParam(r, "userID"), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]loyaltyTxnView, 0, len(txns))
	for _, t := range txns {
		views = append(views, loyaltyTxnView{
			Type:    string(t.Type),
			Points:  t.Points,
			OrderID: t.OrderID,
			Note:    t.Note,
			At:      t.At,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

type adjustLoyaltyRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

func (s *Server) adjustLoyalty(w http.ResponseWriter, r *http.Request) {
	var req adjustLoyaltyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	acc, err := s.loyalty.Adjust(r.Context(), chi.URLParam(r, "userID"), req.Delta, req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loyaltyAccountView{
		UserID:         acc.UserID,
		PointsBalance:  acc.PointsBalance,
		LifetimePoints: acc.LifetimePoints,
		Tier:           acc.Tier,
	})
}

// ---- pre-orders ----

type campaignRequest struct {
	ProductID         string          `json:"product_id"`
	StartAt           time.Time       `json:"start_at"`
	EndAt             time.Time       `json:"end_at"`
	MaxQuantity       int             `json:"max_quantity"`
	DepositPercentage decimal.Decimal `json:"deposit_percentage"`
	SpecialPrice      decimal.Decimal `json:"special_price"`
}

type campaignView struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	StartAt           time.Time       `json:"start_at"`
	EndAt             time.Time       `json:"end_at"`
	MaxQuantity       int             `json:"max_quantity"`
	CurrentQuantity   int             `json:"current_quantity"`
	DepositPercentage decimal.Decimal `json:"deposit_percentage"`
	SpecialPrice      decimal.Decimal `json:"special_price"`
	IsActive          bool            `json:"is_active"`
}

func toCampaignView(c *domain.PreOrderCampaign) campaignView {
	return campaignView{
		ID:                c.GetID(),
		ProductID:         c.ProductID,
		StartAt:           c.StartAt,
		EndAt:             c.EndAt,
		MaxQuantity:       c.MaxQuantity,
		CurrentQuantity:   c.CurrentQuantity,
		DepositPercentage: c.DepositPercentage,
		SpecialPrice:      c.SpecialPrice,
		IsActive:          c.IsActive,
	}
}

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.preorders.CreateCampaign(r.Context(), domain.PreOrderCampaignSpec{
		ProductID:         req.ProductID,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		MaxQuantity:       req.MaxQuantity,
		DepositPercentage: req.DepositPercentage,
		SpecialPrice:      req.SpecialPrice,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCampaignView(c))
}

func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.preorders.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCampaignView(c))
}

func (s *Server) listOpenCampaigns(w http.ResponseWriter, r *http.Request) {
	cs, err := s.preorders.ListOpenCampaigns(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]campaignView, 0, len(cs))
	for _, c := range cs {
		views = append(views, toCampaignView(c))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) deactivateCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.preorders.DeactivateCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

type preOrderRequest struct {
	CampaignID   string          `json:"campaign_id"`
	UserID       string          `json:"user_id"`
	Quantity     int             `json:"quantity"`
	ProductPrice decimal.Decimal `json:"product_price"`
	UserEmail    string          `json:"user_email"`
}

type preOrderView struct {
	ID               string          `json:"id"`
	CampaignID       string          `json:"campaign_id"`
	ProductID        string          `json:"product_id"`
	UserID           string          `json:"user_id"`
	Status           string          `json:"status"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	DepositPaid      bool            `json:"deposit_paid"`
	ExpiresAt        time.Time       `json:"expires_at"`
	ConvertedOrderID string          `json:"converted_order_id,omitempty"`
}

func toPreOrderView(p *domain.PreOrder) preOrderView {
	return preOrderView{
		ID:               p.GetID(),
		CampaignID:       p.CampaignID,
		ProductID:        p.ProductID,
		UserID:           p.UserID,
		Status:           string(p.Status),
		Quantity:         p.Quantity,
		Price:            p.Price,
		DepositAmount:    p.DepositAmount,
		DepositPaid:      p.DepositPaid,
		ExpiresAt:        p.ExpiresAt,
		ConvertedOrderID: p.ConvertedOrderID,
	}
}

func (s *Server) createPreOrder(w http.ResponseWriter, r *http.Request) {
	var req preOrderRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.preorders.Create(r.Context(), application.CreatePreOrderCmd{
		CampaignID:   req.CampaignID,
		UserID:       req.UserID,
		Quantity:     req.Quantity,
		ProductPrice: req.ProductPrice,
		UserEmail:    req.UserEmail,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPreOrderView(p))
}

func (s *Server) getPreOrder(w http.ResponseWriter, r *http.Request) {
	p, err := s.preorders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreOrderView(p))
}

type payDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) payDeposit(w http.ResponseWriter, r *http.Request) {
	var req payDepositRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.preorders.PayDeposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreOrderView(p))
}

func (s *Server) markReadyToShip(w http.ResponseWriter, r *http.Request) {
	p, err := s.preorders.MarkReadyToShip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreOrderView(p))
}

func (s *Server) convertPreOrder(w http.ResponseWriter, r *http.Request) {
	p, err := s.preorders.ConvertToOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreOrderView(p))
}

func (s *Server) cancelPreOrder(w http.ResponseWriter, r *http.Request) {
	p, err := s.preorders.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreOrderView(p))
}

// ---- referrals ----

func (s *Server) getOrCreateReferralCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.referrals.GetOrCreateCode(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": code.UserID,
		"code":    code.Code,
	})
}

type applyReferralRequest struct {
	Code           string `json:"code"`
	ReferredUserID string `json:"referred_user_id"`
}

func (s *Server) applyReferralCode(w http.ResponseWriter, r *http.Request) {
	var req applyReferralRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ref, err := s.referrals.Apply(r.Context(), req.Code, req.ReferredUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":               ref.GetID(),
		"referrer_user_id": ref.ReferrerUserID,
		"referred_user_id": ref.ReferredUserID,
		"status":           string(ref.Status),
	})
}

func (s *Server) listReferrals(w http.ResponseWriter, r *http.Request) {
	refs, err := s.referrals.ListByReferrer(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]map[string]interface{}, 0, len(refs))
	for _, ref := range refs {
		views = append(views, map[string]interface{}{
			"id":               ref.GetID(),
			"referred_user_id": ref.ReferredUserID,
			"status":           string(ref.Status),
			"applied_at":       ref.AppliedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

// ---- checkout ----

type checkoutRequest struct {
	UserID       string          `json:"user_id"`
	OrderID      string          `json:"order_id"`
	OrderAmount  decimal.Decimal `json:"order_amount"`
	ProductIDs   []string        `json:"product_ids"`
	CouponCode   string          `json:"coupon_code"`
	PointsToUse  int64           `json:"points_to_use"`
	GiftCardCode string          `json:"gift_card_code"`
}

type breakdownView struct {
	CouponDiscount  decimal.Decimal `json:"coupon_discount"`
	PointsDiscount  decimal.Decimal `json:"points_discount"`
	GiftCardApplied decimal.Decimal `json:"gift_card_applied"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	AmountDue       decimal.Decimal `json:"amount_due"`
}

func toBreakdownView(b *application.DiscountBreakdown) breakdownView {
	return breakdownView{
		CouponDiscount:  b.CouponDiscount,
		PointsDiscount:  b.PointsDiscount,
		GiftCardApplied: b.GiftCardApplied,
		TotalDiscount:   b.TotalDiscount,
		AmountDue:       b.AmountDue,
	}
}

func (req checkoutRequest) toApplication() application.CheckoutRequest {
	return application.CheckoutRequest{
		UserID:       req.UserID,
		OrderID:      req.OrderID,
		OrderAmount:  req.OrderAmount,
		ProductIDs:   req.ProductIDs,
		CouponCode:   req.CouponCode,
		PointsToUse:  req.PointsToUse,
		GiftCardCode: req.GiftCardCode,
	}
}

func (s *Server) quoteCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.checkout.Quote(r.Context(), req.toApplication())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBreakdownView(b))
}

func (s *Server) settleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.checkout.Settle(r.Context(), req.toApplication())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBreakdownView(b))
}
