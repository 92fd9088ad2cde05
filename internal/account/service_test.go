package account

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/model"
	"github.com/hitoshi/keybind/internal/repository"
	"github.com/hitoshi/keybind/internal/signature"
)

// --- モック ---

type mockStore struct {
	findFn   func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error)
	createFn func(ctx context.Context, binding *model.Binding) error

	findCalls   int
	createCalls int
}

func (m *mockStore) FindAccountByKey(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
	m.findCalls++
	if m.findFn != nil {
		return m.findFn(ctx, publicKey)
	}
	return uuid.Nil, false, nil
}

func (m *mockStore) CreateBinding(ctx context.Context, binding *model.Binding) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, binding)
	}
	return nil
}

var _ repository.BindingRepository = (*mockStore)(nil)

type mockVerifier struct {
	result bool
	calls  int
}

func (m *mockVerifier) Verify(publicKey, message, sig []byte) bool {
	m.calls++
	return m.result
}

type mockNotifier struct {
	mu       sync.Mutex
	bindings []*model.Binding
}

func (m *mockNotifier) NotifyRegistered(ctx context.Context, binding *model.Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, binding)
}

// --- ヘルパー ---

type keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newKeypair(t *testing.T) keypair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return keypair{pub: pub, priv: priv}
}

func (k keypair) publicB64() string {
	return base64.StdEncoding.EncodeToString(k.pub)
}

func (k keypair) signB64(msg string) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(k.priv, []byte(msg)))
}

// --- LookupService ---

func TestLookupService_Lookup_Found(t *testing.T) {
	want := uuid.New()
	store := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			if string(publicKey) != "pk1" {
				t.Errorf("publicKey = %q, want %q", publicKey, "pk1")
			}
			return want, true, nil
		},
	}

	got, err := NewLookupService(store, nil).Lookup(context.Background(), []byte("pk1"))
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got != want {
		t.Errorf("Lookup = %s, want %s", got, want)
	}
}

func TestLookupService_Lookup_NotFound(t *testing.T) {
	_, err := NewLookupService(&mockStore{}, nil).Lookup(context.Background(), []byte("unknown"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupService_Lookup_StoreErrorPropagates(t *testing.T) {
	store := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			return uuid.Nil, false, model.NewStoreError("find account by key", context.DeadlineExceeded)
		},
	}

	_, err := NewLookupService(store, nil).Lookup(context.Background(), []byte("pk"))
	if !model.IsStoreError(err) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected timeout cause to be preserved")
	}
}

// --- RegistrationService ---

func TestRegistrationService_Register_Success(t *testing.T) {
	kp := newKeypair(t)
	fixedID := uuid.MustParse("6f1c1c2e-8a3e-4b5f-9d3c-2a1b0c9d8e7f")
	fixedNow := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	var created *model.Binding
	store := &mockStore{
		createFn: func(ctx context.Context, binding *model.Binding) error {
			created = binding
			return nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewRegistrationService(store, signature.NewEd25519Verifier(), notifier, nil)
	svc.newID = func() (uuid.UUID, error) { return fixedID, nil }
	svc.now = func() time.Time { return fixedNow }

	got, err := svc.Register(context.Background(), RegisterRequest{
		PublicKey:      kp.publicB64(),
		Email:          "a@example.com",
		EmailSignature: kp.signB64("a@example.com"),
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if got != fixedID {
		t.Errorf("Register = %s, want %s", got, fixedID)
	}

	if created == nil {
		t.Fatal("expected CreateBinding to be called")
	}
	if created.AccountID != fixedID {
		t.Errorf("binding.AccountID = %s, want %s", created.AccountID, fixedID)
	}
	if string(created.PublicKey) != string(kp.pub) {
		t.Error("binding.PublicKey should be the decoded public key bytes")
	}
	if created.Email != "a@example.com" {
		t.Errorf("binding.Email = %q, want %q", created.Email, "a@example.com")
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Errorf("binding.CreatedAt = %v, want %v", created.CreatedAt, fixedNow)
	}

	if len(notifier.bindings) != 1 || notifier.bindings[0] != created {
		t.Error("expected notifier to receive the created binding")
	}
}

func TestRegistrationService_Register_InvalidSignature_NoMutation(t *testing.T) {
	kp := newKeypair(t)
	other := newKeypair(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "別の鍵で署名",
			req:  RegisterRequest{PublicKey: kp.publicB64(), Email: "a@example.com", EmailSignature: other.signB64("a@example.com")},
		},
		{
			name: "別のメールに署名",
			req:  RegisterRequest{PublicKey: kp.publicB64(), Email: "a@example.com", EmailSignature: kp.signB64("b@example.com")},
		},
		{
			name: "公開鍵のbase64が不正",
			req:  RegisterRequest{PublicKey: "%%%", Email: "a@example.com", EmailSignature: kp.signB64("a@example.com")},
		},
		{
			name: "署名のbase64が不正",
			req:  RegisterRequest{PublicKey: kp.publicB64(), Email: "a@example.com", EmailSignature: "%%%"},
		},
		{
			name: "公開鍵の長さが不正",
			req:  RegisterRequest{PublicKey: base64.StdEncoding.EncodeToString(kp.pub[:16]), Email: "a@example.com", EmailSignature: kp.signB64("a@example.com")},
		},
		{
			name: "空の入力",
			req:  RegisterRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			notifier := &mockNotifier{}
			svc := NewRegistrationService(store, signature.NewEd25519Verifier(), notifier, nil)

			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, model.ErrInvalidSignature) {
				t.Fatalf("err = %v, want ErrInvalidSignature", err)
			}
			if store.findCalls != 0 || store.createCalls != 0 {
				t.Errorf("store should not be touched: find=%d create=%d", store.findCalls, store.createCalls)
			}
			if len(notifier.bindings) != 0 {
				t.Error("notifier should not be called")
			}
		})
	}
}

func TestRegistrationService_Register_AlreadyRegistered_PreCheck(t *testing.T) {
	kp := newKeypair(t)
	store := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			return uuid.New(), true, nil
		},
	}

	svc := NewRegistrationService(store, signature.NewEd25519Verifier(), nil, nil)
	_, err := svc.Register(context.Background(), RegisterRequest{
		PublicKey:      kp.publicB64(),
		Email:          "a@example.com",
		EmailSignature: kp.signB64("a@example.com"),
	})
	if !errors.Is(err, model.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
	if store.createCalls != 0 {
		t.Error("CreateBinding should not be called for an existing key")
	}
}

// TestRegistrationService_Register_AlreadyRegistered_Race は事前確認後に一意制約で弾かれた場合を検証する。
func TestRegistrationService_Register_AlreadyRegistered_Race(t *testing.T) {
	kp := newKeypair(t)
	notifier := &mockNotifier{}
	store := &mockStore{
		createFn: func(ctx context.Context, binding *model.Binding) error {
			return model.ErrAlreadyRegistered
		},
	}

	svc := NewRegistrationService(store, signature.NewEd25519Verifier(), notifier, nil)
	_, err := svc.Register(context.Background(), RegisterRequest{
		PublicKey:      kp.publicB64(),
		Email:          "a@example.com",
		EmailSignature: kp.signB64("a@example.com"),
	})
	if !errors.Is(err, model.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
	if len(notifier.bindings) != 0 {
		t.Error("notifier should not be called when creation fails")
	}
}

func TestRegistrationService_Register_StoreErrorPropagates(t *testing.T) {
	kp := newKeypair(t)
	req := RegisterRequest{
		PublicKey:      kp.publicB64(),
		Email:          "a@example.com",
		EmailSignature: kp.signB64("a@example.com"),
	}

	t.Run("検索失敗", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
				return uuid.Nil, false, model.NewStoreError("find account by key", errors.New("connection refused"))
			},
		}
		_, err := NewRegistrationService(store, signature.NewEd25519Verifier(), nil, nil).Register(context.Background(), req)
		if !model.IsStoreError(err) {
			t.Fatalf("err = %v, want StoreError", err)
		}
		if store.createCalls != 0 {
			t.Error("CreateBinding should not be called after lookup failure")
		}
	})

	t.Run("作成失敗", func(t *testing.T) {
		store := &mockStore{
			createFn: func(ctx context.Context, binding *model.Binding) error {
				return model.NewStoreError("create binding", errors.New("disk full"))
			},
		}
		_, err := NewRegistrationService(store, signature.NewEd25519Verifier(), nil, nil).Register(context.Background(), req)
		if !model.IsStoreError(err) {
			t.Fatalf("err = %v, want StoreError", err)
		}
		if store.createCalls != 1 {
			t.Errorf("createCalls = %d, want 1 (no retry)", store.createCalls)
		}
	})
}

func TestRegistrationService_Register_IDGenerationFailure(t *testing.T) {
	kp := newKeypair(t)
	store := &mockStore{}

	svc := NewRegistrationService(store, signature.NewEd25519Verifier(), nil, nil)
	svc.newID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }

	_, err := svc.Register(context.Background(), RegisterRequest{
		PublicKey:      kp.publicB64(),
		Email:          "a@example.com",
		EmailSignature: kp.signB64("a@example.com"),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if store.createCalls != 0 {
		t.Error("CreateBinding should not be called without an id")
	}
}

// --- AuthenticationService ---

func TestAuthenticationService_Authenticate_Success(t *testing.T) {
	kp := newKeypair(t)
	want := uuid.New()
	store := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			if string(publicKey) != string(kp.pub) {
				t.Error("store should be queried with the decoded public key")
			}
			return want, true, nil
		},
	}

	got, err := NewAuthenticationService(store, signature.NewEd25519Verifier(), nil).Authenticate(context.Background(), AuthenticateRequest{
		PublicKey:        kp.publicB64(),
		Message:          "hello",
		MessageSignature: kp.signB64("hello"),
	})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got != want {
		t.Errorf("Authenticate = %s, want %s", got, want)
	}
}

// TestAuthenticationService_Authenticate_UnknownKey_SkipsVerification は未登録の鍵では署名検証を行わないことを検証する。
func TestAuthenticationService_Authenticate_UnknownKey_SkipsVerification(t *testing.T) {
	kp := newKeypair(t)
	verifier := &mockVerifier{result: true}

	_, err := NewAuthenticationService(&mockStore{}, verifier, nil).Authenticate(context.Background(), AuthenticateRequest{
		PublicKey:        kp.publicB64(),
		Message:          "hello",
		MessageSignature: "%%% not even base64",
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0", verifier.calls)
	}
}

func TestAuthenticationService_Authenticate_InvalidSignature(t *testing.T) {
	kp := newKeypair(t)
	other := newKeypair(t)
	registered := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			return uuid.New(), true, nil
		},
	}

	tests := []struct {
		name string
		sig  string
	}{
		{name: "別の鍵の署名", sig: other.signB64("hello")},
		{name: "別メッセージの署名", sig: kp.signB64("hello!")},
		{name: "ゴミデータ", sig: base64.StdEncoding.EncodeToString([]byte("garbage"))},
		{name: "base64不正", sig: "%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthenticationService(registered, signature.NewEd25519Verifier(), nil).Authenticate(context.Background(), AuthenticateRequest{
				PublicKey:        kp.publicB64(),
				Message:          "hello",
				MessageSignature: tt.sig,
			})
			if !errors.Is(err, model.ErrInvalidSignature) {
				t.Fatalf("err = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestAuthenticationService_Authenticate_MalformedPublicKey(t *testing.T) {
	store := &mockStore{}
	_, err := NewAuthenticationService(store, signature.NewEd25519Verifier(), nil).Authenticate(context.Background(), AuthenticateRequest{
		PublicKey: "%%%",
		Message:   "hello",
	})
	if !errors.Is(err, model.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if store.findCalls != 0 {
		t.Error("store should not be queried with an undecodable key")
	}
}

func TestAuthenticationService_Authenticate_StoreErrorPropagates(t *testing.T) {
	kp := newKeypair(t)
	store := &mockStore{
		findFn: func(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
			return uuid.Nil, false, model.NewStoreError("find account by key", errors.New("connection reset"))
		},
	}

	_, err := NewAuthenticationService(store, signature.NewEd25519Verifier(), nil).Authenticate(context.Background(), AuthenticateRequest{
		PublicKey:        kp.publicB64(),
		Message:          "hello",
		MessageSignature: kp.signB64("hello"),
	})
	if !model.IsStoreError(err) {
		t.Fatalf("err = %v, want StoreError", err)
	}
}
