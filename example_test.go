package authservice_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/notify"
	"github.com/MrEthical07/authservice/secret"
)

func exampleConfig() authservice.Config {
	cfg := authservice.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("example-secret")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	return cfg
}

func ExampleBuilder_Build() {
	engine, err := authservice.New().
		WithConfig(exampleConfig()).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer engine.Close()

	ctx := context.Background()
	_ = engine.Signup(ctx, authservice.SignupRequest{Email: "alice@example.com", Password: secret.New("password1!")})

	res, err := engine.Login(ctx, "alice@example.com", secret.New("password1!"))
	if err != nil {
		fmt.Println(err)
		return
	}
	info, _ := engine.VerifyToken(ctx, res.Token)
	fmt.Println(info.Email)
	// Output: alice@example.com
}

func ExampleEngine_Verify2FA() {
	var code string
	sms := notify.Func(func(_ context.Context, _ secret.String, _, body string) error {
		code = body
		return nil
	})

	engine, _ := authservice.New().
		WithConfig(exampleConfig()).
		WithNotifier(sms).
		Build()
	defer engine.Close()

	ctx := context.Background()
	_ = engine.Signup(ctx, authservice.SignupRequest{
		Email:       "bob@example.com",
		Password:    secret.New("password1!"),
		Requires2FA: true,
	})

	pending, _ := engine.Login(ctx, "bob@example.com", secret.New("password1!"))
	fmt.Println(pending.TwoFactorRequired)

	res, err := engine.Verify2FA(ctx, authservice.Verify2FARequest{
		Email:          "bob@example.com",
		LoginAttemptID: pending.LoginAttemptID,
		Code:           code,
	})
	fmt.Println(err == nil && res.Token != "")

	// The challenge is single use.
	_, err = engine.Verify2FA(ctx, authservice.Verify2FARequest{
		Email:          "bob@example.com",
		LoginAttemptID: pending.LoginAttemptID,
		Code:           code,
	})
	fmt.Println(errors.Is(err, authservice.ErrUnauthorized))
	// Output:
	// true
	// true
	// true
}
