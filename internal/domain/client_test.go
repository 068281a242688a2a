package domain

import "testing"

func TestIsDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"all digits", "123456789", true},
		{"empty", "", false},
		{"letter inside", "12345a789", false},
		{"plus prefix", "+48123456", false},
		{"space inside", "123 45678", false},
		{"unicode digit", "１２３", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDigits(tt.input); got != tt.want {
				t.Errorf("IsDigits(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPeselChecksumOK(t *testing.T) {
	tests := []struct {
		name  string
		pesel string
		want  bool
	}{
		{"valid", "44051401359", true},
		{"valid year 2002", "02070803628", true},
		{"control off by one", "44051401358", false},
		{"swapped digits", "44051401539", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeselChecksumOK(tt.pesel); got != tt.want {
				t.Errorf("PeselChecksumOK(%q) = %v, want %v", tt.pesel, got, tt.want)
			}
		})
	}
}

func TestClientIsDeleted(t *testing.T) {
	c := Client{}
	if c.IsDeleted() {
		t.Error("fresh client reported as deleted")
	}
}
