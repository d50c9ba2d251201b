package tool

import (
	"github.com/cloudwego/eino/schema"
)

// Tool names exposed to the model.
const (
	ToolProcessCardPayment           = "process_card_payment"
	ToolCreatePromptPayPayment       = "create_promptpay_payment"
	ToolCreateInternetBankingPayment = "create_internet_banking_payment"
	ToolCheckPaymentStatus           = "check_payment_status"

	ToolSearchProductBySKU = "search_product_by_sku"
	ToolAddProductToCart   = "add_product_to_cart"
	ToolUpdateCartItem     = "update_cart_item"
	ToolListProducts       = "list_products"

	ToolSaveShippingAddress  = "save_shipping_address"
	ToolSaveBillingAddress   = "save_billing_address"
	ToolGetSavedAddresses    = "get_saved_addresses"
	ToolSavePaymentMethod    = "save_payment_method"
	ToolGetQuickCheckoutData = "get_quick_checkout_data"
	ToolProcessQuickCheckout = "process_quick_checkout"
)

// SupportedBanks are the internet banking targets the gateway accepts.
var SupportedBanks = []string{"bay", "bbl", "ktb", "scb"}

// Capabilities flags which optional tool families are live for this process.
// The catalog and the executor's unconfigured-capability answers derive from
// the same value.
type Capabilities struct {
	Platform bool
	Profile  bool
}

// Infos lists the tool schemas advertised to the model for the given
// capability set. Payment tools and cart editing are always present; product
// lookups and profile tools appear only when their capability is configured.
func Infos(caps Capabilities) []*schema.ToolInfo {
	infos := append(paymentInfos(), updateCartItemInfo())
	if caps.Platform {
		infos = append(infos, platformInfos()...)
	}
	if caps.Profile {
		infos = append(infos, profileInfos()...)
	}
	return infos
}

func updateCartItemInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolUpdateCartItem,
		Desc: "Change the quantity of a cart line. Quantity 0 removes the line.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"cart_item_id": {Type: schema.String, Desc: "Cart line id", Required: true},
			"quantity":     {Type: schema.Integer, Desc: "New quantity; 0 removes the line", Required: true},
		}),
	}
}

func paymentInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolProcessCardPayment,
			Desc: "Charge the session total to a tokenized card. Requires a card token obtained from the payment form, never raw card numbers.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"card_token": {Type: schema.String, Desc: "Tokenized card reference (tokn_...)", Required: true},
			}),
		},
		{
			Name:        ToolCreatePromptPayPayment,
			Desc:        "Create a PromptPay QR payment for the session total. Returns a QR code reference the customer scans with their banking app.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolCreateInternetBankingPayment,
			Desc: "Create an internet banking payment for the session total. Returns a redirect link to the chosen bank.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"bank": {
					Type:     schema.String,
					Desc:     "Bank code",
					Enum:     SupportedBanks,
					Required: true,
				},
			}),
		},
		{
			Name: ToolCheckPaymentStatus,
			Desc: "Look up the current status of a charge. Read-only.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"charge_id": {Type: schema.String, Desc: "Charge id (chrg_...)", Required: true},
			}),
		},
	}
}

func platformInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolSearchProductBySKU,
			Desc: "Find a store product by its exact SKU.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {Type: schema.String, Desc: "Stock keeping unit", Required: true},
			}),
		},
		{
			Name: ToolAddProductToCart,
			Desc: "Fetch a store product and add it to the cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {Type: schema.String, Desc: "Store product id", Required: true},
				"quantity":   {Type: schema.Integer, Desc: "Units to add, defaults to 1"},
			}),
		},
		{
			Name: ToolListProducts,
			Desc: "List store products, optionally filtered by a search term.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"limit":  {Type: schema.Integer, Desc: "Maximum products to return, defaults to 10"},
				"search": {Type: schema.String, Desc: "Search term"},
			}),
		},
	}
}

func profileInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name:        ToolSaveShippingAddress,
			Desc:        "Save a shipping address on the customer's profile.",
			ParamsOneOf: schema.NewParamsOneOfByParams(addressParams()),
		},
		{
			Name:        ToolSaveBillingAddress,
			Desc:        "Save a billing address on the customer's profile.",
			ParamsOneOf: schema.NewParamsOneOfByParams(addressParams()),
		},
		{
			Name:        ToolGetSavedAddresses,
			Desc:        "List the customer's saved shipping and billing addresses.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolSavePaymentMethod,
			Desc: "Save a reusable payment method on the customer's profile.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"type": {
					Type:     schema.String,
					Desc:     "Payment method type",
					Enum:     []string{"card", "promptpay", "internet_banking", "mobile_banking"},
					Required: true,
				},
				"label":      {Type: schema.String, Desc: "Display label"},
				"card_token": {Type: schema.String, Desc: "Card token, for card methods"},
				"bank":       {Type: schema.String, Desc: "Bank code, for banking methods"},
				"is_default": {Type: schema.Boolean, Desc: "Make this the default method"},
			}),
		},
		{
			Name:        ToolGetQuickCheckoutData,
			Desc:        "Show the customer's default shipping address, billing address, and payment method.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name:        ToolProcessQuickCheckout,
			Desc:        "Pay the session total with the customer's saved default payment method.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
	}
}

func addressParams() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"name":        {Type: schema.String, Desc: "Recipient name", Required: true},
		"line1":       {Type: schema.String, Desc: "Street address", Required: true},
		"line2":       {Type: schema.String, Desc: "Unit, floor, or building"},
		"city":        {Type: schema.String, Desc: "City or district", Required: true},
		"state":       {Type: schema.String, Desc: "Province or state"},
		"postal_code": {Type: schema.String, Desc: "Postal code", Required: true},
		"country":     {Type: schema.String, Desc: "Country code, defaults to TH"},
		"phone":       {Type: schema.String, Desc: "Contact phone"},
		"is_default":  {Type: schema.Boolean, Desc: "Make this the default for its category"},
	}
}
