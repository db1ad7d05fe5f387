package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// codeAlphabet is the 62-symbol alphabet short codes are drawn from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxGenerateAttempts bounds the generation loop. With a 62^6 keyspace the
// cap is never reached in practice; hitting it signals keyspace pressure and
// surfaces as ErrCodeGenerationExhausted instead of looping forever.
const maxGenerateAttempts = 1000

// ErrCodeGenerationExhausted is returned when the generator fails to find an
// unused short code within the attempt cap.
var ErrCodeGenerationExhausted = errors.New("short code generation attempts exhausted")

type codeChecker interface {
	CodeExists(ctx context.Context, shortCode string) (bool, error)
}

// codeGenerator produces random short codes and guarantees uniqueness
// against stored codes before returning one. Generation is read-only; the
// insert happens separately and the unique constraint settles any race
// between the check and the insert.
type codeGenerator struct {
	length  int
	checker codeChecker
}

func newCodeGenerator(length int, checker codeChecker) *codeGenerator {
	return &codeGenerator{
		length:  length,
		checker: checker,
	}
}

// Generate draws fresh candidates until one is not yet stored, up to
// maxGenerateAttempts.
func (g *codeGenerator) Generate(ctx context.Context) (string, error) {
	const op = "service.codeGenerator.Generate"

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := g.newCandidate()
		if err != nil {
			return "", fmt.Errorf("%s: failed to draw candidate: %w", op, err)
		}

		exists, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check candidate: %w", op, err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%s: %w", op, ErrCodeGenerationExhausted)
}

// newCandidate samples length characters from the alphabet without
// replacement within one candidate, so a code never repeats a character.
func (g *codeGenerator) newCandidate() (string, error) {
	pool := []byte(codeAlphabet)
	code := make([]byte, g.length)

	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
		if err != nil {
			return "", err
		}

		j := n.Int64()
		code[i] = pool[j]
		pool = append(pool[:j], pool[j+1:]...)
	}

	return string(code), nil
}
