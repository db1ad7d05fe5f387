package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checkerFunc func(ctx context.Context, shortCode string) (bool, error)

func (f checkerFunc) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	return f(ctx, shortCode)
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

func TestCodeGenerator_NewCandidate(t *testing.T) {
	gen := newCodeGenerator(6, nil)

	for i := 0; i < 100; i++ {
		code, err := gen.newCandidate()

		assert.NoError(t, err)
		assert.Regexp(t, codePattern, code)

		// Sampling without replacement: no character repeats within a candidate.
		seen := make(map[byte]bool, len(code))
		for j := 0; j < len(code); j++ {
			assert.False(t, seen[code[j]], "character %q repeated in %q", code[j], code)
			seen[code[j]] = true
		}
	}
}

func TestCodeGenerator_Generate(t *testing.T) {
	t.Run("checker error", func(t *testing.T) {
		errUnknown := errors.New("unknown error")

		gen := newCodeGenerator(6, checkerFunc(func(ctx context.Context, shortCode string) (bool, error) {
			return false, errUnknown
		}))

		code, err := gen.Generate(context.Background())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Empty(t, code)
	})

	t.Run("retries taken codes", func(t *testing.T) {
		var attempts int

		gen := newCodeGenerator(6, checkerFunc(func(ctx context.Context, shortCode string) (bool, error) {
			attempts++
			return attempts <= 3, nil
		}))

		code, err := gen.Generate(context.Background())

		assert.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.Equal(t, 4, attempts)
	})

	t.Run("attempt cap exhausted", func(t *testing.T) {
		var attempts int

		gen := newCodeGenerator(6, checkerFunc(func(ctx context.Context, shortCode string) (bool, error) {
			attempts++
			return true, nil
		}))

		code, err := gen.Generate(context.Background())

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrCodeGenerationExhausted)
		assert.Empty(t, code)
		assert.Equal(t, maxGenerateAttempts, attempts)
	})
}
