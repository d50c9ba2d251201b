package tool

import (
	"errors"
	"testing"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

func TestDecodeArgsRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := decodeArgs[CardPaymentArgs]([]byte(`{"card_token":`))
	if !errors.Is(err, contractx.ErrToolArguments) {
		t.Fatalf("expected ErrToolArguments, got %v", err)
	}
}

func TestDecodeArgsEmptyPayloadStillValidates(t *testing.T) {
	t.Parallel()

	if _, err := decodeArgs[CardPaymentArgs](nil); !errors.Is(err, contractx.ErrToolArguments) {
		t.Fatalf("expected ErrToolArguments for missing token, got %v", err)
	}
	if _, err := decodeArgs[PromptPayArgs](nil); err != nil {
		t.Fatalf("argument-free tool must accept an empty payload, got %v", err)
	}
	if _, err := decodeArgs[PromptPayArgs]([]byte(`null`)); err != nil {
		t.Fatalf("argument-free tool must accept null, got %v", err)
	}
}

func TestListProductsArgsDefaultsLimit(t *testing.T) {
	t.Parallel()

	args, err := decodeArgs[ListProductsArgs]([]byte(`{"search":"shirt"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Limit != 10 {
		t.Fatalf("expected default limit 10, got %d", args.Limit)
	}
}

func TestInternetBankingArgsNormalizeBank(t *testing.T) {
	t.Parallel()

	args, err := decodeArgs[InternetBankingArgs]([]byte(`{"bank":" BBL "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Bank != "bbl" {
		t.Fatalf("expected normalized bank, got %q", args.Bank)
	}
}

func TestSavePaymentMethodArgsNormalizeType(t *testing.T) {
	t.Parallel()

	args, err := decodeArgs[SavePaymentMethodArgs]([]byte(`{"type":"Card"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Type != "card" {
		t.Fatalf("expected normalized type, got %q", args.Type)
	}
}

func TestUpdateCartItemArgsDistinguishZeroFromAbsent(t *testing.T) {
	t.Parallel()

	args, err := decodeArgs[UpdateCartItemArgs]([]byte(`{"cart_item_id":"1","quantity":0}`))
	if err != nil {
		t.Fatalf("explicit zero must validate: %v", err)
	}
	if args.Quantity == nil || *args.Quantity != 0 {
		t.Fatalf("expected explicit zero, got %v", args.Quantity)
	}

	if _, err := decodeArgs[UpdateCartItemArgs]([]byte(`{"cart_item_id":"1"}`)); !errors.Is(err, contractx.ErrToolArguments) {
		t.Fatalf("absent quantity must fail decode, got %v", err)
	}
}
