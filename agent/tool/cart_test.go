package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

func testPlatform() *fakePlatform {
	gadget := &contractx.Product{
		ID: "prod_2", SKU: "GAD-1", Name: "Gadget", Price: 29900, Currency: "thb", InStock: true,
	}
	return &fakePlatform{
		products: map[string]*contractx.Product{"prod_2": gadget},
		bySKU:    map[string]*contractx.Product{"GAD-1": gadget},
		listed:   []contractx.Product{*gadget},
	}
}

func TestSearchBySKUFindsProduct(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	out, err := flows.searchBySKU(context.Background(), session, []byte(`{"sku":"GAD-1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Gadget") || !strings.Contains(out, "299.00 THB") {
		t.Fatalf("unexpected summary: %s", out)
	}
}

func TestSearchBySKUMiss(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	out, err := flows.searchBySKU(context.Background(), session, []byte(`{"sku":"NOPE"}`))
	if err != nil {
		t.Fatalf("a clean miss is a conversational outcome, got error %v", err)
	}
	if !strings.Contains(out, "NOPE") {
		t.Fatalf("reply should echo the sku: %s", out)
	}
}

func TestSearchBySKUWithoutPlatform(t *testing.T) {
	t.Parallel()

	flows := &productFlows{}
	session := newTestSession(t)

	out, err := flows.searchBySKU(context.Background(), session, []byte(`{"sku":"GAD-1"}`))
	if err != nil {
		t.Fatalf("missing platform must not be an error: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Fatalf("reply should explain the missing capability: %s", out)
	}
}

func TestAddProductRecomputesTotal(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	out, err := flows.addToCart(context.Background(), session, []byte(`{"product_id":"prod_2"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.TotalAmount != 129900 {
		t.Fatalf("expected total 129900, got %d", session.TotalAmount)
	}
	if !strings.Contains(out, "1299.00 THB") {
		t.Fatalf("reply should confirm the new total: %s", out)
	}
	if len(session.Cart) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(session.Cart))
	}
}

func TestAddProductDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	if _, err := flows.addToCart(context.Background(), session, []byte(`{"product_id":"prod_2"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := session.Cart[1].Quantity; got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
}

func TestAddProductUnknownID(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	out, err := flows.addToCart(context.Background(), session, []byte(`{"product_id":"prod_missing"}`))
	if err != nil {
		t.Fatalf("unknown product is a conversational outcome, got error %v", err)
	}
	if session.TotalAmount != 100000 {
		t.Fatalf("cart must not change on a miss, got total %d", session.TotalAmount)
	}
	if !strings.Contains(out, "prod_missing") {
		t.Fatalf("reply should echo the product id: %s", out)
	}
}

func TestAddProductOutOfStock(t *testing.T) {
	t.Parallel()

	platform := testPlatform()
	platform.products["prod_3"] = &contractx.Product{ID: "prod_3", Name: "Rare Thing", Price: 500, Currency: "thb"}
	flows := &productFlows{platform: platform}
	session := newTestSession(t)

	out, err := flows.addToCart(context.Background(), session, []byte(`{"product_id":"prod_3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.TotalAmount != 100000 {
		t.Fatalf("out of stock must not change the cart, got total %d", session.TotalAmount)
	}
	if !strings.Contains(out, "out of stock") {
		t.Fatalf("unexpected reply: %s", out)
	}
}

func TestAddProductRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	_, err := flows.addToCart(context.Background(), session, []byte(`{"product_id":"prod_2","quantity":-1}`))
	if !errors.Is(err, contractx.ErrToolArguments) {
		t.Fatalf("expected ErrToolArguments, got %v", err)
	}
}

func TestUpdateCartItemZeroRemovesLine(t *testing.T) {
	t.Parallel()

	flows := &productFlows{}
	session := newTestSession(t)

	out, err := flows.updateCartItem(context.Background(), session, []byte(`{"cart_item_id":"1","quantity":0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.Cart) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(session.Cart))
	}
	if session.TotalAmount != 0 {
		t.Fatalf("expected total 0, got %d", session.TotalAmount)
	}
	if !strings.Contains(out, "Removed") {
		t.Fatalf("unexpected reply: %s", out)
	}
}

func TestUpdateCartItemSetsQuantity(t *testing.T) {
	t.Parallel()

	flows := &productFlows{}
	session := newTestSession(t)

	out, err := flows.updateCartItem(context.Background(), session, []byte(`{"cart_item_id":"1","quantity":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.TotalAmount != 200000 {
		t.Fatalf("expected total 200000, got %d", session.TotalAmount)
	}
	if !strings.Contains(out, "2000.00 THB") {
		t.Fatalf("reply should confirm the new total: %s", out)
	}
}

func TestUpdateCartItemUnknownIDLeavesCartAlone(t *testing.T) {
	t.Parallel()

	flows := &productFlows{}
	session := newTestSession(t)

	out, err := flows.updateCartItem(context.Background(), session, []byte(`{"cart_item_id":"99","quantity":3}`))
	if err != nil {
		t.Fatalf("unknown line is a conversational outcome, got error %v", err)
	}
	if session.TotalAmount != 100000 || len(session.Cart) != 1 {
		t.Fatalf("cart must not change, got total %d with %d lines", session.TotalAmount, len(session.Cart))
	}
	if !strings.Contains(out, "no item") {
		t.Fatalf("unexpected reply: %s", out)
	}
}

func TestUpdateCartItemRequiresQuantity(t *testing.T) {
	t.Parallel()

	flows := &productFlows{}
	session := newTestSession(t)

	_, err := flows.updateCartItem(context.Background(), session, []byte(`{"cart_item_id":"1"}`))
	if !errors.Is(err, contractx.ErrToolArguments) {
		t.Fatalf("an omitted quantity must fail decode, got %v", err)
	}
}

func TestListProductsFormatsResults(t *testing.T) {
	t.Parallel()

	flows := &productFlows{platform: testPlatform()}
	session := newTestSession(t)

	out, err := flows.listProducts(context.Background(), session, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Gadget") {
		t.Fatalf("unexpected listing: %s", out)
	}
}

func TestListProductsEmptySearch(t *testing.T) {
	t.Parallel()

	platform := testPlatform()
	platform.listed = nil
	flows := &productFlows{platform: platform}
	session := newTestSession(t)

	out, err := flows.listProducts(context.Background(), session, []byte(`{"search":"unobtainium"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "unobtainium") {
		t.Fatalf("reply should echo the search term: %s", out)
	}
}
