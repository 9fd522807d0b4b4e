package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordService(t *testing.T) {
	ps, err := NewPasswordService(0)
	if err != nil {
		t.Fatalf("NewPasswordService(0) error = %v", err)
	}
	if ps.cost != DefaultCost {
		t.Errorf("cost = %d, want %d", ps.cost, DefaultCost)
	}

	for _, cost := range []int{1, bcrypt.MaxCost + 1} {
		if _, err := NewPasswordService(cost); err == nil {
			t.Errorf("NewPasswordService(%d) should fail", cost)
		}
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Errorf("Hash() = %q, want a cost-4 bcrypt hash", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	a, err := ps.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := ps.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical; salt missing?")
	}
}

func TestHash_LengthLimit(t *testing.T) {
	ps := NewPasswordServiceForTest()

	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Errorf("Hash(72 bytes) error = %v", err)
	}
	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash(73 bytes) error = %v, want ErrPasswordTooLong", err)
	}
}

func TestVerify(t *testing.T) {
	ps := NewPasswordServiceForTest()
	hash, err := ps.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name    string
		hash    string
		input   string
		wantErr error
	}{
		{name: "correct", hash: hash, input: "correct horse"},
		{name: "wrong", hash: hash, input: "battery staple", wantErr: ErrPasswordMismatch},
		{name: "empty", hash: hash, input: "", wantErr: ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := NewPasswordServiceForTest()

	err := ps.Verify("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("Verify() with garbage hash should fail")
	}
	if errors.Is(err, ErrPasswordMismatch) {
		t.Error("garbage hash should not be reported as a mismatch")
	}
}
