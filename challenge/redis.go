package challenge

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice/credential"
)

const (
	challengeRecordVersion1 = 1
	defaultKeyPrefix        = "two_fa_code"
	maxConsumeRetries       = 4
)

// RedisStore keeps one key per identity with a native Redis TTL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) key(identity credential.Identity) string {
	return s.prefix + ":" + identity.String()
}

func (s *RedisStore) Add(ctx context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error {
	record := Challenge{
		AttemptID: attemptID,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	encoded, err := encodeChallenge(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(identity), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, identity credential.Identity) (Challenge, error) {
	data, err := s.redis.Get(ctx, s.key(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Challenge{}, ErrNotFound
		}
		return Challenge{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	record, err := decodeChallenge(data)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if !s.now().Before(record.ExpiresAt) {
		return Challenge{}, ErrNotFound
	}
	return record, nil
}

func (s *RedisStore) Remove(ctx context.Context, identity credential.Identity) error {
	n, err := s.redis.Del(ctx, s.key(identity)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Consume watches the key, compares, and deletes inside MULTI/EXEC. A
// concurrent writer aborts the transaction and the comparison is retried
// against the new value.
func (s *RedisStore) Consume(ctx context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error {
	key := s.key(identity)

	for i := 0; i < maxConsumeRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeChallenge(data)
			if err != nil {
				return err
			}
			if !s.now().Before(record.ExpiresAt) {
				return ErrNotFound
			}
			if !record.matches(attemptID, code) {
				return ErrMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.Nil), errors.Is(err, ErrNotFound):
			return ErrNotFound
		case errors.Is(err, ErrMismatch):
			return ErrMismatch
		default:
			return fmt.Errorf("%w: %v", ErrBackend, err)
		}
	}

	return fmt.Errorf("%w: consume contention on %s", ErrBackend, s.prefix)
}

func encodeChallenge(record Challenge) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(challengeRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt.UnixMilli()); err != nil {
		return nil, err
	}
	buf.Write(record.AttemptID.id[:])

	code := record.Code.String()
	if len(code) > 255 {
		return nil, errors.New("challenge code length exceeded")
	}
	buf.WriteByte(byte(len(code)))
	buf.WriteString(code)

	return buf.Bytes(), nil
}

func decodeChallenge(data []byte) (Challenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return Challenge{}, err
	}
	if version != challengeRecordVersion1 {
		return Challenge{}, errors.New("invalid challenge record version")
	}

	var (
		record    Challenge
		expiresAt int64
	)
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return Challenge{}, err
	}
	record.ExpiresAt = time.UnixMilli(expiresAt)

	if _, err := io.ReadFull(reader, record.AttemptID.id[:]); err != nil {
		return Challenge{}, err
	}

	codeLen, err := reader.ReadByte()
	if err != nil {
		return Challenge{}, err
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(reader, code); err != nil {
		return Challenge{}, err
	}
	if record.Code, err = ParseCode(string(code)); err != nil {
		return Challenge{}, err
	}

	return record, nil
}
