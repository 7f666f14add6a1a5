package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	users := repository.NewUserRepository(newTestDB(t))
	return NewAuthService(users, testLogger(), &AuthConfig{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		InitialCredits: 3,
		BcryptCost:     bcrypt.MinCost,
	})
}

func TestAuthService_Register(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "  alice  ", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if first.Username != "alice" || !first.IsAdmin || first.Credits != 3 {
		t.Errorf("first user = %+v, want admin alice with 3 credits", first)
	}
	if first.PasswordHash == "correct horse" || first.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	second, err := svc.Register(ctx, "bob", "battery staple")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if second.IsAdmin {
		t.Error("only the first user becomes admin")
	}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "duplicate", username: "alice", password: "another pass", want: ErrConflict},
		{name: "short username", username: "al", password: "long enough", want: ErrBadRequest},
		{name: "long username", username: strings.Repeat("a", 33), password: "long enough", want: ErrBadRequest},
		{name: "short password", username: "carol", password: "short", want: ErrBadRequest},
		{name: "long password", username: "carol", password: strings.Repeat("p", 73), want: ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthService_ConcurrentRegisterMakesOneAdmin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	const n = 8
	users := make([]*domain.User, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i], errs[i] = svc.Register(ctx, fmt.Sprintf("user%d", i), "long enough")
		}(i)
	}
	wg.Wait()

	admins := 0
	for i := range users {
		if errs[i] != nil {
			t.Fatalf("Register(user%d) error = %v", i, errs[i])
		}
		if users[i].IsAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("%d admins after concurrent registration, want 1", admins)
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user, err := svc.Register(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	session, err := svc.Login(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", session.ExpiresAt)
	}

	got, err := svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate() user = %s, want %s", got.ID, user.ID)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong horse")
		if !errors.Is(err, ErrUnauthorized) || err.Error() != "Invalid username or password" {
			t.Errorf("Login() error = %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Login(ctx, "nobody", "correct horse"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Login() error = %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(2 * time.Hour) }
		defer func() { svc.now = func() time.Time { return now } }()
		if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate() error = %v", err)
		}
	})

	t.Run("foreign signature", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		if _, err := svc.Authenticate(ctx, signed); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate() error = %v", err)
		}
	})

	t.Run("unknown subject", func(t *testing.T) {
		orphan := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "deleted-user",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		signed, _ := orphan.SignedString([]byte("test-secret"))
		if _, err := svc.Authenticate(ctx, signed); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate() error = %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate() error = %v", err)
		}
	})
}

func TestAuthService_SetCredits(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "admin", "admin password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	user, err := svc.Register(ctx, "alice", "alice password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	updated, err := svc.SetCredits(ctx, admin, user.ID, 10)
	if err != nil {
		t.Fatalf("SetCredits() error = %v", err)
	}
	if updated.Credits != 10 {
		t.Errorf("Credits = %d, want 10", updated.Credits)
	}

	tests := []struct {
		name    string
		caller  *domain.User
		userID  string
		credits int
		want    error
	}{
		{name: "anonymous", caller: nil, userID: user.ID, credits: 1, want: ErrUnauthorized},
		{name: "not admin", caller: user, userID: admin.ID, credits: 1, want: ErrForbidden},
		{name: "negative", caller: admin, userID: user.ID, credits: -1, want: ErrBadRequest},
		{name: "unknown user", caller: admin, userID: "missing", credits: 1, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SetCredits(ctx, tt.caller, tt.userID, tt.credits); !errors.Is(err, tt.want) {
				t.Errorf("SetCredits() error = %v, want %v", err, tt.want)
			}
		})
	}
}
