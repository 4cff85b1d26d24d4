package http

import (
	"github.com/bbuddy-otp/internal/application/otp"
	"github.com/bbuddy-otp/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPStore otp.Store
	Mailer   otp.Mailer
	Clock    clock.Clocker // nil uses the system clock
}
