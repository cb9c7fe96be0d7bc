package passwd

import (
	"strings"
	"testing"
)

func testHasher() *Hasher {
	return NewHasher(Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16})
}

func TestHasher(t *testing.T) {
	h := testHasher()

	t.Run("Hash is deterministic for a salt", func(t *testing.T) {
		salt := []byte("0123456789abcdef")
		first := h.Hash("hunter22", salt)
		second := h.Hash("hunter22", salt)

		if first != second {
			t.Errorf("expected identical digests, got %q and %q", first, second)
		}
		if !strings.HasPrefix(first, "argon2id$v=19$m=1024,t=1,p=1$") {
			t.Errorf("unexpected encoding: %s", first)
		}
		if strings.Contains(first, "hunter22") {
			t.Error("digest must not contain the plaintext")
		}
	})

	t.Run("different salts produce different digests", func(t *testing.T) {
		a := h.Hash("hunter22", []byte("aaaaaaaaaaaaaaaa"))
		b := h.Hash("hunter22", []byte("bbbbbbbbbbbbbbbb"))
		if a == b {
			t.Error("expected salt to change the digest")
		}
	})

	t.Run("HashNew and Verify", func(t *testing.T) {
		encoded, err := h.HashNew("abcd")
		if err != nil {
			t.Fatalf("HashNew() error = %v", err)
		}

		tt := []struct {
			name     string
			password string
			want     bool
		}{
			{name: "correct password", password: "abcd", want: true},
			{name: "wrong password", password: "abce", want: false},
			{name: "empty password", password: "", want: false},
			{name: "prefix of password", password: "abc", want: false},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if got := h.Verify(tc.password, encoded); got != tc.want {
					t.Errorf("Verify(%q) = %v, want %v", tc.password, got, tc.want)
				}
			})
		}
	})

	t.Run("Verify with empty or malformed digest", func(t *testing.T) {
		if h.Verify("abcd", "") {
			t.Error("empty digest must never verify")
		}
		if h.Verify("abcd", "argon2id$v=19$garbage") {
			t.Error("malformed digest must not verify")
		}
		if h.Verify("abcd", "argon2id$v=18$m=1024,t=1,p=1$AAAA$AAAA") {
			t.Error("unsupported version must not verify")
		}
	})

	t.Run("legacy digests verify", func(t *testing.T) {
		legacy := LegacyDigest("abcd")
		if len(legacy) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(legacy))
		}
		if !h.Verify("abcd", legacy) {
			t.Error("expected legacy digest to verify")
		}
		if !h.Verify("abcd", strings.ToUpper(legacy)) {
			t.Error("expected upper-case legacy digest to verify")
		}
		if h.Verify("abcde", legacy) {
			t.Error("expected wrong password to fail against legacy digest")
		}
	})

	t.Run("NeedsRehash", func(t *testing.T) {
		current, err := h.HashNew("abcd")
		if err != nil {
			t.Fatalf("HashNew() error = %v", err)
		}

		if h.NeedsRehash(current) {
			t.Error("digest with current params should not need rehash")
		}
		if !h.NeedsRehash(LegacyDigest("abcd")) {
			t.Error("legacy digest should need rehash")
		}

		stronger := NewHasher(Params{Time: 2, Memory: 1024, Threads: 1, KeyLen: 16})
		if !stronger.NeedsRehash(current) {
			t.Error("digest with weaker params should need rehash")
		}
	})

	t.Run("zero params fall back to defaults", func(t *testing.T) {
		h := NewHasher(Params{})
		if h.params != DefaultParams() {
			t.Errorf("expected default params, got %+v", h.params)
		}
	})
}
