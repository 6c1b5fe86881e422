package overlay

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  State
	}{
		{"empty", "", State{}},
		{"product", "modal=product&id=42", State{Kind: ProductDetail, TargetID: "42"}},
		{"product without id", "modal=product", State{Kind: ProductDetail}},
		{"cart ignores id", "modal=cart&id=9", State{Kind: CartSummary}},
		{"unknown kind fails closed", "modal=wishlist&id=3", State{}},
		{"id without modal", "id=3", State{}},
		{"other params", "sort=price&modal=cart", State{Kind: CartSummary}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			got := Derive(q)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Derive(q), "derive must be idempotent")
		})
	}
}

func TestEncode_PreservesOtherParams(t *testing.T) {
	q := url.Values{"sort": {"price"}, "modal": {"cart"}, "id": {"old"}}

	got := Encode(State{Kind: ProductDetail, TargetID: "3"}, q)
	assert.Equal(t, "id=3&modal=product&sort=price", got.Encode())
	assert.Equal(t, "cart", q.Get("modal"), "input must not be modified")

	closed := Encode(State{}, got)
	assert.Equal(t, "sort=price", closed.Encode())
}

func TestEncode_CartHasNoID(t *testing.T) {
	got := Encode(State{Kind: CartSummary, TargetID: "ignored"}, nil)
	assert.Equal(t, "modal=cart", got.Encode())
}

func TestRoundTrip(t *testing.T) {
	states := []State{
		{},
		{Kind: ProductDetail, TargetID: "42"},
		{Kind: ProductDetail},
		{Kind: CartSummary},
	}
	for _, s := range states {
		assert.Equal(t, s, Derive(Encode(s, url.Values{"page": {"2"}})))
	}
}

func TestWithState_CollapsesToBarePath(t *testing.T) {
	u, _ := url.Parse("/products?modal=product&id=3")

	closed := WithState(u, State{})
	assert.Equal(t, "/products", closed.String())
	assert.Equal(t, "/products?modal=product&id=3", u.String(), "input must not be modified")

	opened := WithState(closed, State{Kind: ProductDetail, TargetID: "3"})
	assert.Equal(t, "/products?id=3&modal=product", opened.String())
}

func TestState_Predicates(t *testing.T) {
	assert.False(t, State{}.IsOpen())
	assert.True(t, State{Kind: CartSummary}.IsOpen())
	assert.True(t, State{Kind: ProductDetail}.Missing())
	assert.False(t, State{Kind: CartSummary}.Missing())
	assert.True(t, State{Kind: CartSummary, Generation: 1}.Same(State{Kind: CartSummary, Generation: 7}))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("product")
	assert.True(t, ok)
	assert.Equal(t, ProductDetail, k)

	_, ok = ParseKind("PRODUCT")
	assert.False(t, ok)

	assert.Equal(t, "none", None.String())
	assert.Equal(t, "cart", CartSummary.String())
}
