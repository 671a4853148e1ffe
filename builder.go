package authservice

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/internal/flows"
	"github.com/MrEthical07/authservice/internal/logging"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/ledger"
	"github.com/MrEthical07/authservice/notify"
	"github.com/MrEthical07/authservice/password"
)

// Builder collects configuration and backends for an Engine. A Builder can
// be used for one Build only.
//
// Backend precedence per store: an explicit With*Store option, then
// WithRedis or WithDatabase, then process memory.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	db     credential.DBTX

	credentials credential.Store
	challenges  challenge.Store
	ledger      ledger.Ledger
	notifier    notify.Notifier
	logger      *slog.Logger

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis keeps pending challenges and revoked tokens in Redis.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDatabase keeps users in Postgres. The schema must already be applied
// with credential.Migrate.
func (b *Builder) WithDatabase(db credential.DBTX) *Builder {
	b.db = db
	return b
}

func (b *Builder) WithCredentialStore(store credential.Store) *Builder {
	b.credentials = store
	return b
}

func (b *Builder) WithChallengeStore(store challenge.Store) *Builder {
	b.challenges = store
	return b
}

func (b *Builder) WithLedger(l ledger.Ledger) *Builder {
	b.ledger = l
	return b
}

// WithNotifier sets how 2FA codes reach users. The default writes them to
// the log, which is only suitable for development.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, starts the password workers and wires
// every backend.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var log logging.Logger = logging.Nop{}
	if b.logger != nil {
		log = logging.NewSlogLogger(b.logger).With("component", "authservice")
	}

	// -------- SESSION ISSUER --------
	issuer, err := jwt.NewManager(cfg.jwtConfig())
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD WORKERS --------
	hasher, err := password.NewArgon2(cfg.passwordConfig())
	if err != nil {
		return nil, err
	}
	pool := password.NewPool(hasher, cfg.Password.Workers)

	// -------- STORES --------
	credentials := b.credentials
	if credentials == nil {
		if b.db != nil {
			credentials = credential.NewPostgresStore(b.db, pool)
		} else {
			credentials = credential.NewMemoryStore(pool)
		}
	}

	challenges := b.challenges
	if challenges == nil {
		if b.redis != nil {
			challenges = challenge.NewRedisStore(b.redis, cfg.Redis.ChallengePrefix, cfg.TwoFactor.ChallengeTTL)
		} else {
			challenges = challenge.NewMemoryStore(cfg.TwoFactor.ChallengeTTL)
		}
	}

	revoked := b.ledger
	if revoked == nil {
		if b.redis != nil {
			revoked = ledger.NewRedisLedger(b.redis, cfg.Redis.LedgerPrefix)
		} else {
			revoked = ledger.NewMemoryLedger()
		}
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	engine := &Engine{
		config: cfg,
		flow: flows.New(flows.Deps{
			Credentials:      credentials,
			Challenges:       challenges,
			Ledger:           revoked,
			Issuer:           issuer,
			Notifier:         notifier,
			TwoFactorSubject: cfg.TwoFactor.Subject,
			Leeway:           cfg.JWT.Leeway,
		}),
		pool:    pool,
		metrics: NewMetrics(cfg.Metrics),
		log:     log,
	}

	b.built = true
	return engine, nil
}
