package validators

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

type applyBody struct {
	ShopName     string  `json:"shop_name" validate:"required"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Address      *string `json:"address"`
	ReferralCode string  `json:"referral_code"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"shop_name":"a","extra":1}`))
	var body applyBody
	err := DecodeJSONBody(r, &body)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var body applyBody
	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["shop_name"] != "is required" || details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeFormOrJSONReadsURLEncodedForm(t *testing.T) {
	form := url.Values{"shop_name": {"Dhaka Crafts"}, "address": {"Mirpur 10"}, "referral_code": {"AB12CD34"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body applyBody
	if err := DecodeFormOrJSON(r, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ShopName != "Dhaka Crafts" || body.ReferralCode != "AB12CD34" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Address == nil || *body.Address != "Mirpur 10" {
		t.Fatalf("expected address pointer, got %v", body.Address)
	}
}

func TestDecodeFormOrJSONFallsBackToJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"shop_name":"Dhaka Crafts"}`))
	r.Header.Set("Content-Type", "application/json")
	var body applyBody
	if err := DecodeFormOrJSON(r, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ShopName != "Dhaka Crafts" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=20&bad=x&big=500", nil)
	if v, err := ParseQueryInt(r, "limit", 25, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected 20, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(r, "missing", 25, 1, 100); err != nil || v != 25 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(r, "bad", 25, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
	if _, err := ParseQueryInt(r, "big", 25, 1, 100); err == nil {
		t.Fatal("expected range error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  abcdef  ", 3); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringFoldsWhitespaceAndCountsRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  Dhaka \t\n  North  ", 0, "Dhaka North"},
		{"ঢাকা শহর", 4, "ঢাকা"},
		{"a\x00b\x07c", 0, "abc"},
		{"ab   cd", 3, "ab"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestParseQueryIntRejectsRepeatedKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&limit=6", nil)
	if _, err := ParseQueryInt(r, "limit", 25, 1, 100); err == nil {
		t.Fatal("expected repeated parameter to be rejected")
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	params, err := ParsePagination(r)
	if err != nil || params.Limit != pagination.DefaultLimit || params.Cursor != "" {
		t.Fatalf("unexpected defaults %+v %v", params, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/?cursor=%21%21", nil)
	if _, err := ParsePagination(r); err == nil {
		t.Fatal("expected tampered cursor to be rejected")
	}
}

func TestDecodeJSONBodyRejectsTrailingAndEmpty(t *testing.T) {
	var body applyBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"shop_name":"a"} {"shop_name":"b"}`))
	if err := DecodeJSONBody(r, &body); err == nil {
		t.Fatal("expected trailing object to be rejected")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSONBody(r, &body)
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "request body is empty" {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestDecodeJSONBodyNamesMistypedField(t *testing.T) {
	var body applyBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"shop_name":12}`))
	typed := pkgerrors.As(DecodeJSONBody(r, &body))
	if typed == nil {
		t.Fatal("expected typed error")
	}
	details := typed.Details().(map[string]any)
	if details["field"] != "shop_name" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestBDPhoneValidation(t *testing.T) {
	type phoneBody struct {
		Phone string `json:"phone" validate:"bdphone"`
	}
	for _, ok := range []string{"01712345678", "+8801712345678", "8801912345678", "017 1234 5678"} {
		if err := ValidateStruct(&phoneBody{Phone: ok}); err != nil {
			t.Fatalf("expected %q to pass: %v", ok, err)
		}
	}
	for _, bad := range []string{"0700", "01212345678", "+4401712345678"} {
		if err := ValidateStruct(&phoneBody{Phone: bad}); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}
