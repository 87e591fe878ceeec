package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type slotRequest struct {
	Start string  `validate:"required,hhmm"`
	Opt   *string `validate:"omitempty,hhmm"`
	State string  `validate:"omitempty,case_state"`
}

func TestRegisteredTags(t *testing.T) {
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatal(err)
	}

	bad := "25:00"
	cases := []struct {
		req   slotRequest
		valid bool
	}{
		{slotRequest{Start: "09:30"}, true},
		{slotRequest{Start: "23:59", State: "process"}, true},
		{slotRequest{Start: "9:30"}, false},
		{slotRequest{Start: "09:30", Opt: &bad}, false},
		{slotRequest{Start: "09:30", State: "archived"}, false},
	}

	for _, tc := range cases {
		err := v.Struct(tc.req)
		if (err == nil) != tc.valid {
			t.Fatalf("%+v: valid=%v, err=%v", tc.req, tc.valid, err)
		}
	}
}
