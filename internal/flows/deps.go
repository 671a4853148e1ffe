package flows

import (
	"time"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/ledger"
	"github.com/MrEthical07/authservice/notify"
)

// Issuer mints and verifies session tokens. *jwt.Manager satisfies it.
type Issuer interface {
	Mint(subject string) (string, time.Time, error)
	Verify(token string) (*jwt.Claims, error)
}

// Deps is built once by the root engine and shared by every flow.
type Deps struct {
	Credentials credential.Store
	Challenges  challenge.Store
	Ledger      ledger.Ledger
	Issuer      Issuer
	Notifier    notify.Notifier

	// TwoFactorSubject is the notification subject for login codes.
	TwoFactorSubject string
	// Leeway is the clock skew the Issuer tolerates past expiry. Revocations
	// are kept until expiry plus Leeway.
	Leeway time.Duration
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
