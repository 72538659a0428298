package types

import (
	"errors"
	"strings"
	"testing"
)

func TestKeyValidatorDefaults(t *testing.T) {
	v := NewKeyValidator(DefaultKeyValidationConfig())

	t.Run("accepts typical keys", func(t *testing.T) {
		keys := []string{
			"park:mk",
			"hours:ep:2026-08-29",
			"attraction:space-mountain",
			"waittime:80010110",
			"history:80010110:2026-08-28",
			"key with spaces",
			"用户:123:キー",
		}
		for _, key := range keys {
			if err := v.Validate(key); err != nil {
				t.Errorf("Validate(%q) = %v, want nil", key, err)
			}
		}
	})

	t.Run("rejects empty key", func(t *testing.T) {
		err := v.Validate("")
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for empty key, got %v", err)
		}
	})

	t.Run("rejects oversized key", func(t *testing.T) {
		err := v.Validate(strings.Repeat("a", 1025))
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for long key, got %v", err)
		}
	})

	t.Run("rejects control characters", func(t *testing.T) {
		for _, key := range []string{"bad\x00key", "bad\nkey", "bad\x7fkey"} {
			if err := v.Validate(key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Validate(%q) = %v, want ErrInvalidKey", key, err)
			}
		}
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		err := v.Validate(string([]byte{0xff, 0xfe}))
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for invalid UTF-8, got %v", err)
		}
	})
}

func TestKeyValidatorConfig(t *testing.T) {
	t.Run("allow empty", func(t *testing.T) {
		cfg := DefaultKeyValidationConfig()
		cfg.AllowEmpty = true
		v := NewKeyValidator(cfg)
		if err := v.Validate(""); err != nil {
			t.Errorf("Expected empty key allowed, got %v", err)
		}
	})

	t.Run("disallow whitespace", func(t *testing.T) {
		cfg := DefaultKeyValidationConfig()
		cfg.AllowWhitespace = false
		v := NewKeyValidator(cfg)
		if err := v.Validate("key with spaces"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for whitespace, got %v", err)
		}
	})

	t.Run("allow control chars", func(t *testing.T) {
		cfg := DefaultKeyValidationConfig()
		cfg.AllowControlChars = true
		v := NewKeyValidator(cfg)
		if err := v.Validate("key\twith\ttabs"); err != nil {
			t.Errorf("Expected control chars allowed, got %v", err)
		}
	})

	t.Run("reserved patterns", func(t *testing.T) {
		cfg := DefaultKeyValidationConfig()
		cfg.ReservedPatterns = []string{"__internal__"}
		v := NewKeyValidator(cfg)

		if err := v.Validate("park:__internal__:mk"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for reserved pattern, got %v", err)
		}
		if err := v.Validate("park:mk"); err != nil {
			t.Errorf("Expected plain key allowed, got %v", err)
		}
	})

	t.Run("zero max length disables length check", func(t *testing.T) {
		cfg := DefaultKeyValidationConfig()
		cfg.MaxKeyLength = 0
		v := NewKeyValidator(cfg)
		if err := v.Validate(strings.Repeat("a", 4096)); err != nil {
			t.Errorf("Expected long key allowed, got %v", err)
		}
	})
}

func TestValidateKeyDefault(t *testing.T) {
	if err := ValidateKey("park:mk"); err != nil {
		t.Errorf("Expected default validator to accept key, got %v", err)
	}
	if err := ValidateKey(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected default validator to reject empty key, got %v", err)
	}
	if !IsInvalidKey(ValidateKey("")) {
		t.Error("IsInvalidKey should detect validation failures")
	}
}
