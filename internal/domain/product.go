package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Product is the normalized product record. Upstream payloads expose seller
// identity under different field names; all of them are decoded once here
// and kept apart so resolvers can apply their own priority.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	FinalPrice decimal.Decimal
	Stock      int
	InStock    bool

	SellerID       *int64 // seller_id
	NestedSellerID *int64 // seller.id
	CamelSellerID  *int64 // sellerId
	UserID         *int64 // user_id
}

// SellerCandidate picks the seller id carried by an embedded product
// snapshot: seller_id, seller.id, sellerId, then user_id.
func (p Product) SellerCandidate() (int64, bool) {
	for _, id := range []*int64{p.SellerID, p.NestedSellerID, p.CamelSellerID, p.UserID} {
		if id != nil {
			return *id, true
		}
	}
	return 0, false
}

type rawProduct struct {
	ID              looseInt     `json:"id"`
	Name            FlexString   `json:"name"`
	Price           looseDecimal `json:"price"`
	FinalPrice      looseDecimal `json:"final_price"`
	DiscountedPrice looseDecimal `json:"discounted_price"`
	Stock           *looseInt    `json:"stock"`
	IsInStock       looseBool    `json:"is_in_stock"`
	InStock         looseBool    `json:"in_stock"`
	SellerID        looseInt     `json:"seller_id"`
	CamelSellerID   looseInt     `json:"sellerId"`
	UserID          looseInt     `json:"user_id"`
	Seller          looseSeller  `json:"seller"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var raw rawProduct
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("json.Unmarshal product: %w", err)
	}

	*p = Product{
		ID:             lo.FromPtr(raw.ID.v),
		Name:           string(raw.Name),
		Price:          raw.Price.d,
		FinalPrice:     raw.FinalPrice.d,
		SellerID:       raw.SellerID.v,
		NestedSellerID: raw.Seller.ID.v,
		CamelSellerID:  raw.CamelSellerID.v,
		UserID:         raw.UserID.v,
	}

	if p.FinalPrice.IsZero() {
		p.FinalPrice = raw.DiscountedPrice.d
	}

	if raw.Stock != nil {
		p.Stock = int(lo.FromPtr(raw.Stock.v))
	}

	switch {
	case raw.IsInStock.v != nil:
		p.InStock = *raw.IsInStock.v
	case raw.InStock.v != nil:
		p.InStock = *raw.InStock.v
	default:
		p.InStock = p.Stock > 0
	}

	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	raw := rawProduct{
		ID:            looseInt{v: lo.ToPtr(p.ID)},
		Name:          FlexString(p.Name),
		Price:         looseDecimal{d: p.Price},
		FinalPrice:    looseDecimal{d: p.FinalPrice},
		Stock:         &looseInt{v: lo.ToPtr(int64(p.Stock))},
		IsInStock:     looseBool{v: lo.ToPtr(p.InStock)},
		SellerID:      looseInt{v: p.SellerID},
		CamelSellerID: looseInt{v: p.CamelSellerID},
		UserID:        looseInt{v: p.UserID},
		Seller:        looseSeller{ID: looseInt{v: p.NestedSellerID}},
	}

	return json.Marshal(raw)
}

// looseInt accepts a JSON number or a numeric string. Zero, negative,
// empty and unparsable values decode as absent.
type looseInt struct {
	v *int64
}

func (l *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int64(f)
	}

	if n <= 0 {
		return nil
	}

	l.v = &n
	return nil
}

func (l looseInt) MarshalJSON() ([]byte, error) {
	if l.v == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*l.v, 10)), nil
}

// looseDecimal accepts a JSON number or a numeric string; anything else is zero.
type looseDecimal struct {
	d decimal.Decimal
}

func (l *looseDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}

	l.d = d
	return nil
}

func (l looseDecimal) MarshalJSON() ([]byte, error) {
	return []byte(l.d.String()), nil
}

// looseBool accepts true/false, 1/0 and their string forms ("yes", "no" too).
// Anything else decodes as absent.
type looseBool struct {
	v *bool
}

func (l *looseBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))

	switch s {
	case "true", "1", "yes":
		l.v = lo.ToPtr(true)
	case "false", "0", "no":
		l.v = lo.ToPtr(false)
	}

	return nil
}

func (l looseBool) MarshalJSON() ([]byte, error) {
	if l.v == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(*l.v)), nil
}

// looseSeller reads the id of a seller object. A seller given as a plain
// name or any other non-object value carries no id.
type looseSeller struct {
	ID looseInt `json:"id"`
}

func (l *looseSeller) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	var obj struct {
		ID looseInt `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}

	l.ID = obj.ID
	return nil
}

func (l looseSeller) MarshalJSON() ([]byte, error) {
	if l.ID.v == nil {
		return []byte("null"), nil
	}
	return []byte(`{"id":` + strconv.FormatInt(*l.ID.v, 10) + `}`), nil
}
