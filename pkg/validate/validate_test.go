package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/laundry/pkg/validate"
)

type signupInput struct {
	Username    string `json:"username"    validate:"required,alpha_dash,min=3,max=30"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" validate:"nullable,numeric,min=7"`
}

func TestValidSignup(t *testing.T) {
	errs := validate.Struct(signupInput{
		Username: "juan_dc",
		Email:    "juan@example.com",
		Password: "secret123",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})
	for _, f := range []string{"username", "email", "password"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected %s to be required", f)
		}
	}
	if _, ok := errs["phoneNumber"]; ok {
		t.Error("nullable phoneNumber should be skipped when empty")
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=user,admin"`
	}
	if errs := validate.Struct(in{Role: "staff"}); !validate.HasErrors(errs) {
		t.Error("expected unknown role to fail")
	}
	for _, role := range []string{"user", "admin"} {
		if errs := validate.Struct(in{Role: role}); validate.HasErrors(errs) {
			t.Errorf("expected %s to pass: %v", role, errs)
		}
	}
}

func TestInRuleFollowedByAnotherRule(t *testing.T) {
	type in struct {
		Type string `json:"serviceType" validate:"in=WalkIn,DropOff,WashAndDry,SpecialItem,required"`
	}
	if errs := validate.Struct(in{Type: "WashAndDry"}); validate.HasErrors(errs) {
		t.Errorf("expected WashAndDry to pass: %v", errs)
	}
	errs := validate.Struct(in{Type: ""})
	if errs["serviceType"] == "" {
		t.Error("expected empty value to fail")
	}
}

func TestNumericStringBounds(t *testing.T) {
	type in struct {
		Cost string `json:"newCost" validate:"required,numeric,gte=0"`
	}
	cases := map[string]bool{"150": true, "99.50": true, "0": true, "-1": false, "abc": false, "": false}
	for input, ok := range cases {
		errs := validate.Struct(in{Cost: input})
		if ok == validate.HasErrors(errs) {
			t.Errorf("newCost=%q: expected ok=%v, got %v", input, ok, errs)
		}
	}
}

func TestNumericKindBounds(t *testing.T) {
	type in struct {
		Rating int `json:"rating" validate:"required,gte=1,lte=5"`
	}
	if errs := validate.Struct(in{Rating: 6}); !validate.HasErrors(errs) {
		t.Error("expected rating 6 to fail")
	}
	if errs := validate.Struct(in{Rating: 4}); validate.HasErrors(errs) {
		t.Errorf("expected rating 4 to pass: %v", errs)
	}
}

func TestURLAndSliceLength(t *testing.T) {
	type in struct {
		Site   string   `json:"site"    validate:"required,url"`
		Images []string `json:"QRImage" validate:"required,max=3"`
	}
	if errs := validate.Struct(in{Site: "https://cdn.example.com/qr.png", Images: []string{"a"}}); validate.HasErrors(errs) {
		t.Errorf("expected valid input to pass: %v", errs)
	}
	errs := validate.Struct(in{Site: "not-a-url", Images: []string{"a", "b", "c", "d"}})
	if _, ok := errs["site"]; !ok {
		t.Error("expected invalid URL to fail")
	}
	if _, ok := errs["QRImage"]; !ok {
		t.Error("expected too many images to fail")
	}
}

func TestObjectID(t *testing.T) {
	type in struct {
		ID string `json:"id" validate:"objectid"`
	}
	if errs := validate.Struct(in{ID: "65f1a2b3c4d5e6f708091a2b"}); validate.HasErrors(errs) {
		t.Errorf("expected hex id to pass: %v", errs)
	}
	if errs := validate.Struct(in{ID: "42"}); !validate.HasErrors(errs) {
		t.Error("expected short id to fail")
	}
}
