package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

const listingJSON = `{"products":[
	{"id":101,"title":"Widget","body_html":"A widget.","variants":[
		{"sku":"WID-1","price":"1000.00","inventory_quantity":3}
	]},
	{"id":102,"title":"Gadget","body_html":"A gadget.","variants":[
		{"sku":"GAD-1","price":"299.00","inventory_quantity":0},
		{"sku":"GAD-2","price":"349.50","inventory_quantity":7}
	]}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		Config{ShopDomain: "teststore.myshopify.com", AccessToken: "shpat_test"},
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestSearchBySKUMatchesVariant(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/products.json" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "shpat_test" {
			t.Fatalf("access token header = %q", got)
		}
		fmt.Fprint(w, listingJSON)
	})

	product, err := client.SearchBySKU(context.Background(), "gad-2")
	if err != nil {
		t.Fatalf("SearchBySKU() error = %v", err)
	}
	if product == nil {
		t.Fatal("SearchBySKU() = nil, want the Gadget variant")
	}
	if product.ID != "102" || product.SKU != "GAD-2" {
		t.Fatalf("product = %#v", product)
	}
	if product.Price != 34950 {
		t.Fatalf("price = %d, want 34950 minor units", product.Price)
	}
	if !product.InStock {
		t.Fatal("product should be in stock")
	}
}

func TestSearchBySKUCleanMiss(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingJSON)
	})

	product, err := client.SearchBySKU(context.Background(), "NOPE-9")
	if err != nil {
		t.Fatalf("SearchBySKU() error = %v", err)
	}
	if product != nil {
		t.Fatalf("product = %#v, want nil on a miss", product)
	}
}

func TestGetProductMapsFirstVariant(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/products/101.json" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"product":{"id":101,"title":"Widget","body_html":"A widget.","variants":[{"sku":"WID-1","price":"1000.00","inventory_quantity":3}]}}`)
	})

	product, err := client.GetProduct(context.Background(), "101")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if product.Name != "Widget" || product.Price != 100000 || !product.InStock {
		t.Fatalf("product = %#v", product)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":"Not Found"}`)
	})

	_, err := client.GetProduct(context.Background(), "999")
	if !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}

func TestListProductsForwardsLimitAndTitleFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, listingJSON)
	})

	products, err := client.ListProducts(context.Background(), 5, "gadget")
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("product count = %d", len(products))
	}
	if gotQuery != "fields=id%2Ctitle%2Cbody_html%2Cvariants&limit=5&title=gadget" {
		t.Fatalf("query = %q", gotQuery)
	}
	if products[1].SKU != "GAD-1" || products[1].Price != 29900 {
		t.Fatalf("products[1] = %#v", products[1])
	}
	if !products[1].InStock {
		t.Fatal("Gadget should be in stock through its second variant")
	}
}
