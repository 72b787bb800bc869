package skyerr

import "testing"

func TestSuccessIsZeroValue(t *testing.T) {
	var s Status
	if !s.IsOK() {
		t.Errorf("zero-value Status should be OK, got kind=%v", s.Kind)
	}
	if AsError(s) != nil {
		t.Errorf("AsError(success) = %v, want nil", AsError(s))
	}
}

func TestNewIsNotOK(t *testing.T) {
	s := New(Shape, "npix not of the form 12*N^2")
	if s.IsOK() {
		t.Error("New(Shape, ...) should not be OK")
	}
	if AsError(s) == nil {
		t.Error("AsError(failure) should not be nil")
	}
	if got, want := s.Error(), "shape-invalid: npix not of the form 12*N^2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFirst(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Kind
	}{
		{"empty", nil, OK},
		{"all ok", []Status{Success, Success}, OK},
		{"failures after a success", []Status{Success, New(Convergence, "x"), New(Memory, "y")}, Convergence},
		{"first of several failures", []Status{New(Memory, "a"), New(Shape, "b")}, Memory},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := First(c.statuses); got.Kind != c.want {
				t.Errorf("First(%v).Kind = %v, want %v", c.statuses, got.Kind, c.want)
			}
		})
	}
}
