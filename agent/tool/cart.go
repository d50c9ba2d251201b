package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
	moneyx "github.com/kittipatv/checkout-agent/pkg/money"
)

const platformUnavailable = "Product lookups are not configured for this store, so I can't search the catalog. Items can still be added by the caller when the session is created."

// productFlows backs the catalog tools with the store platform.
type productFlows struct {
	platform contractx.Platform
}

func (f *productFlows) searchBySKU(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[SearchBySKUArgs](raw)
	if err != nil {
		return "", err
	}
	if f.platform == nil {
		return platformUnavailable, nil
	}

	product, err := f.platform.SearchBySKU(ctx, args.SKU)
	if err != nil {
		return "", fmt.Errorf("search sku %s: %w", args.SKU, err)
	}
	if product == nil {
		return fmt.Sprintf("No product matches SKU %s.", args.SKU), nil
	}
	return describeProduct(product), nil
}

func (f *productFlows) addToCart(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[AddProductArgs](raw)
	if err != nil {
		return "", err
	}
	if f.platform == nil {
		return platformUnavailable, nil
	}
	if session.Status.Terminal() {
		return fmt.Sprintf("This checkout is already %s, so the cart can no longer change.", session.Status), nil
	}

	product, err := f.platform.GetProduct(ctx, args.ProductID)
	if err != nil {
		if errors.Is(err, contractx.ErrProductNotFound) {
			return fmt.Sprintf("No product with id %s exists in the store.", args.ProductID), nil
		}
		return "", fmt.Errorf("get product %s: %w", args.ProductID, err)
	}
	if !product.InStock {
		return fmt.Sprintf("%s is currently out of stock.", product.Name), nil
	}

	if err := session.AddItem(statex.CartItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: args.Quantity,
	}); err != nil {
		return "", fmt.Errorf("add product %s to cart: %w", product.ID, err)
	}

	return fmt.Sprintf("Added %d x %s at %s each. The cart total is now %s.",
		args.Quantity, product.Name,
		moneyx.FormatWithCurrency(product.Price, session.Currency),
		moneyx.FormatWithCurrency(session.TotalAmount, session.Currency)), nil
}

func (f *productFlows) updateCartItem(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[UpdateCartItemArgs](raw)
	if err != nil {
		return "", err
	}
	if session.Status.Terminal() {
		return fmt.Sprintf("This checkout is already %s, so the cart can no longer change.", session.Status), nil
	}

	changed := session.UpdateItemQuantity(args.CartItemID, *args.Quantity)
	if !changed {
		return fmt.Sprintf("The cart has no item with id %s.", args.CartItemID), nil
	}

	total := moneyx.FormatWithCurrency(session.TotalAmount, session.Currency)
	if *args.Quantity == 0 {
		return fmt.Sprintf("Removed item %s from the cart. The cart total is now %s.", args.CartItemID, total), nil
	}
	return fmt.Sprintf("Set item %s to quantity %d. The cart total is now %s.", args.CartItemID, *args.Quantity, total), nil
}

func (f *productFlows) listProducts(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[ListProductsArgs](raw)
	if err != nil {
		return "", err
	}
	if f.platform == nil {
		return platformUnavailable, nil
	}

	products, err := f.platform.ListProducts(ctx, args.Limit, args.Search)
	if err != nil {
		return "", fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		if args.Search != "" {
			return fmt.Sprintf("No products match %q.", args.Search), nil
		}
		return "The store has no products to show.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s):\n", len(products))
	for i := range products {
		b.WriteString(describeProduct(&products[i]))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func describeProduct(p *contractx.Product) string {
	stock := "in stock"
	if !p.InStock {
		stock = "out of stock"
	}
	desc := fmt.Sprintf("%s (id %s", p.Name, p.ID)
	if p.SKU != "" {
		desc += fmt.Sprintf(", sku %s", p.SKU)
	}
	desc += fmt.Sprintf(") costs %s and is %s.", moneyx.FormatWithCurrency(p.Price, p.Currency), stock)
	return desc
}
