package otp

import (
	"math/rand"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Generator produces passcodes.
type Generator interface {
	Generate() string
}

// RandomGenerator draws six-digit codes uniformly from [100000, 999999]
// using the runtime's general-purpose source.
type RandomGenerator struct{}

func (RandomGenerator) Generate() string {
	return strconv.Itoa(codeMin + rand.Intn(codeMax-codeMin+1))
}
