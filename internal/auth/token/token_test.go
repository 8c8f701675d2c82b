package token

import "testing"

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	a, err := GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	b, err := GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	if a == b {
		t.Fatal("two generated tokens are identical")
	}
	if len(a) == 0 {
		t.Fatal("empty token")
	}
}

func TestHashSHA256Deterministic(t *testing.T) {
	if HashSHA256("abc") != HashSHA256("abc") {
		t.Fatal("hash not deterministic")
	}
	if HashSHA256("abc") == HashSHA256("abd") {
		t.Fatal("different inputs collide")
	}
}
