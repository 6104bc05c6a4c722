package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"01012345678", "0111 234 5678", "+201212345678", "00201512345678", "010-1234-5678"}
	invalid := []string{"0101234567", "01312345678", "12345678901", "", "+2010123"}
	for _, p := range valid {
		if !IsValidPhoneNumber(p) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", p)
		}
	}
	for _, p := range invalid {
		if IsValidPhoneNumber(p) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", p)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	invalid := []string{"24:00", "9:30", "12:60", "noon", ""}
	for _, s := range valid {
		if !IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-02-30", "01-01-2023", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

type sampleRequest struct {
	Name     string   `json:"name" validate:"required,max=10"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Phone    string   `json:"phone" validate:"omitempty,phone"`
	Starts   string   `json:"starts_at" validate:"omitempty,hhmm"`
	Day      string   `json:"day" validate:"omitempty,date"`
	Capacity int      `json:"capacity" validate:"gte=1"`
	Tags     []string `json:"tags" validate:"omitempty,min=1"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sampleRequest{Email: "nope", Phone: "123", Starts: "25:00", Day: "2024-02-31"})

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Struct() error = %v, want ValidationErrors", err)
	}

	got := errs.ToMap()
	for _, field := range []string{"name", "email", "phone", "starts_at", "day", "capacity"} {
		if _, ok := got[field]; !ok {
			t.Errorf("missing validation error for %q in %v", field, got)
		}
	}
	if got["name"] != "name is required" {
		t.Errorf("name message = %q", got["name"])
	}
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sampleRequest{Name: "Group A", Email: "a@b.cd", Phone: "01012345678", Starts: "16:00", Day: "2024-02-29", Capacity: 20})
	if err != nil {
		t.Errorf("Struct() error = %v, want nil", err)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"monthly", "per_session"}
	if !IsInSlice("monthly", slice) {
		t.Error("IsInSlice(monthly) = false, want true")
	}
	if IsInSlice("weekly", slice) {
		t.Error("IsInSlice(weekly) = true, want false")
	}
}

func TestIsValidMonth(t *testing.T) {
	month, ok := IsValidMonth("2024-03")
	if !ok || month.Day() != 1 || month.Month() != 3 {
		t.Errorf("IsValidMonth(2024-03) = %v, %v", month, ok)
	}
	if _, ok := IsValidMonth("2024-13"); ok {
		t.Error("IsValidMonth(2024-13) = true, want false")
	}
}

func TestStructErrors(t *testing.T) {
	errs, err := StructErrors(sampleRequest{Email: "a@b.cd", Phone: "01012345678", Starts: "16:00", Day: "2024-02-29", Capacity: 20})
	if err != nil {
		t.Fatalf("StructErrors() err = %v", err)
	}
	if len(errs) != 1 || errs[0].Field != "name" {
		t.Errorf("StructErrors() = %v, want only name", errs)
	}
}
