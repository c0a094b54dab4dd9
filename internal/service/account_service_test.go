package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/internal/config"
	"github.com/echosuccess/participium-sub000/internal/domain"
)

type accountFixture struct {
	service *AccountService
	users   *memUserRepo
	photos  *memCitizenPhotoRepo
	mailer  *recordingMailer
	store   *memObjectStore
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		users:  newMemUserRepo(),
		photos: newMemCitizenPhotoRepo(),
		mailer: &recordingMailer{},
		store:  newMemObjectStore(),
	}
	cfg := config.AuthConfig{
		JWTSecret:              "test-secret",
		SessionTTLMinutes:      60,
		VerificationTTLMinutes: 30,
		BcryptCost:             4,
	}
	f.service = NewAccountService(cfg, AccountDependencies{
		UserRepo:  f.users,
		PhotoRepo: f.photos,
		Policy:    authz.NewPolicy(),
		Mailer:    f.mailer,
		Store:     f.store,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		Sessions:  auth.NewSessionStore(nil),
		Logger:    zap.NewNop(),
	})
	return f
}

func TestSignupCitizen(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	user, err := f.service.SignupCitizen(ctx, "Mario Rossi", "mario@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignupCitizen: %v", err)
	}
	if user.IsVerified {
		t.Error("fresh citizen account must not be verified")
	}
	if user.VerificationCode == nil || len(*user.VerificationCode) != 6 {
		t.Fatal("verification code must be a 6-digit string")
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "mario@example.com" {
		t.Fatalf("verification email not sent: %v", f.mailer.sent)
	}

	if _, err := f.service.SignupCitizen(ctx, "Other", "MARIO@example.com", "secret123"); statusOf(t, err) != 409 {
		t.Error("duplicate email (case-insensitive): status != 409")
	}
}

func TestSignupSurvivesMailFailure(t *testing.T) {
	f := newAccountFixture()
	f.mailer.fail = true

	user, err := f.service.SignupCitizen(context.Background(), "Mario", "mario@example.com", "secret123")
	if err != nil {
		t.Fatalf("signup must succeed despite mail failure: %v", err)
	}
	if user.VerificationCode == nil {
		t.Fatal("pending code must remain so the citizen can request a resend")
	}
}

func TestVerifyEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user, _ := f.service.SignupCitizen(ctx, "Mario", "mario@example.com", "secret123")
	code := *user.VerificationCode

	if _, err := f.service.VerifyEmail(ctx, "mario@example.com", "000000"); statusOf(t, err) != 400 {
		t.Error("wrong code: status != 400")
	}

	if _, err := f.service.VerifyEmail(ctx, "mario@example.com", code); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	stored, _ := f.users.GetByID(ctx, user.ID)
	if !stored.IsVerified || stored.VerificationCode != nil {
		t.Fatal("verification must flip the flag and clear the code")
	}

	// Verifying again is an idempotent success.
	msg, err := f.service.VerifyEmail(ctx, "mario@example.com", code)
	if err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if msg != "account already verified" {
		t.Fatalf("re-verify message = %q", msg)
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user, _ := f.service.SignupCitizen(ctx, "Mario", "mario@example.com", "secret123")

	expired := time.Now().Add(-time.Minute)
	user.CodeExpiresAt = &expired
	_ = f.users.Update(ctx, user)

	if _, err := f.service.VerifyEmail(ctx, "mario@example.com", *user.VerificationCode); statusOf(t, err) != 400 {
		t.Error("expired code: status != 400")
	}

	// A resend issues a fresh code that works.
	if err := f.service.ResendVerification(ctx, "mario@example.com"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	refreshed, _ := f.users.GetByID(ctx, user.ID)
	if _, err := f.service.VerifyEmail(ctx, "mario@example.com", *refreshed.VerificationCode); err != nil {
		t.Fatalf("verify with resent code: %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user, _ := f.service.SignupCitizen(ctx, "Mario", "mario@example.com", "secret123")

	if _, _, _, err := f.service.Login(ctx, "mario@example.com", "secret123"); statusOf(t, err) != 401 {
		t.Error("unverified citizen login: status != 401")
	}
	if _, _, _, err := f.service.Login(ctx, "mario@example.com", "wrong"); statusOf(t, err) != 401 {
		t.Error("wrong password: status != 401")
	}
	if _, _, _, err := f.service.Login(ctx, "nobody@example.com", "secret123"); statusOf(t, err) != 401 {
		t.Error("unknown email: status != 401")
	}

	if _, err := f.service.VerifyEmail(ctx, "mario@example.com", *user.VerificationCode); err != nil {
		t.Fatalf("verify: %v", err)
	}
	logged, token, claims, err := f.service.Login(ctx, "mario@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || claims.UserID != logged.ID {
		t.Fatal("session token or claims malformed")
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := f.users.add(&domain.User{ID: 1, Name: "Mario", Email: "mario@example.com", Role: domain.RoleCitizen, IsVerified: true, NotificationPref: domain.NotifyByEmail})
	f.users.add(&domain.User{ID: 2, Name: "Luigi", Email: "luigi@example.com", Role: domain.RoleCitizen})

	if _, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdateInput{}); statusOf(t, err) != 400 {
		t.Error("empty update: status != 400")
	}

	taken := "luigi@example.com"
	if _, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdateInput{Email: &taken}); statusOf(t, err) != 409 {
		t.Error("email taken by another account: status != 409")
	}

	name := "Mario Rossi"
	handle := "@mario_rossi"
	pref := domain.NotifyByTelegram
	updated, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdateInput{
		Name:             &name,
		TelegramHandle:   &handle,
		NotificationPref: &pref,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Mario Rossi" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.TelegramHandle == nil || *updated.TelegramHandle != "mario_rossi" {
		t.Errorf("telegram handle not normalized: %v", updated.TelegramHandle)
	}
	if updated.NotificationPref != domain.NotifyByTelegram {
		t.Errorf("notification pref = %s", updated.NotificationPref)
	}
	// Unchanged fields survive a partial update.
	if updated.Email != "mario@example.com" {
		t.Errorf("email changed unexpectedly: %q", updated.Email)
	}

	bad := domain.NotificationPreference("CARRIER_PIGEON")
	if _, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdateInput{NotificationPref: &bad}); statusOf(t, err) != 400 {
		t.Error("unknown preference: status != 400")
	}
}

func TestProfilePhotoReplaceAndDelete(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := f.users.add(&domain.User{ID: 1, Role: domain.RoleCitizen})

	first, err := f.service.SetProfilePhoto(ctx, user.ID, "one.png", strings.NewReader("png-a"))
	if err != nil {
		t.Fatalf("SetProfilePhoto: %v", err)
	}
	second, err := f.service.SetProfilePhoto(ctx, user.ID, "two.png", strings.NewReader("png-b"))
	if err != nil {
		t.Fatalf("replace photo: %v", err)
	}
	if first.URL == second.URL {
		t.Error("replacement must produce a new object")
	}
	if n := f.store.count(); n != 1 {
		t.Fatalf("stored objects after replace = %d, want 1", n)
	}

	if err := f.service.DeleteProfilePhoto(ctx, user.ID); err != nil {
		t.Fatalf("DeleteProfilePhoto: %v", err)
	}
	if n := f.store.count(); n != 0 {
		t.Fatalf("stored objects after delete = %d, want 0", n)
	}
	if err := f.service.DeleteProfilePhoto(ctx, user.ID); statusOf(t, err) != 404 {
		t.Error("deleting absent photo: status != 404")
	}
}

func TestCreateMunicipalityUser(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	if _, err := f.service.CreateMunicipalityUser(ctx, MunicipalityUserInput{
		Name: "X", Email: "x@example.com", Password: "pw", Role: domain.RoleCitizen,
	}); statusOf(t, err) != 400 {
		t.Error("CITIZEN role via admin: status != 400")
	}

	if _, err := f.service.CreateMunicipalityUser(ctx, MunicipalityUserInput{
		Name: "Ext", Email: "ext@example.com", Password: "pw", Role: domain.RoleExternalMaintainer,
	}); statusOf(t, err) != 400 {
		t.Error("external without department: status != 400")
	}

	staff, err := f.service.CreateMunicipalityUser(ctx, MunicipalityUserInput{
		Name: "Anna", Email: "anna@example.com", Password: "pw", Role: domain.RolePublicRelations,
	})
	if err != nil {
		t.Fatalf("CreateMunicipalityUser: %v", err)
	}
	if !staff.IsVerified {
		t.Error("staff accounts are created verified")
	}
}

func TestLastAdministratorGuard(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	admin := f.users.add(&domain.User{ID: 1, Name: "Root", Email: "root@example.com", Role: domain.RoleAdministrator})

	if err := f.service.DeleteMunicipalityUser(ctx, admin.ID); statusOf(t, err) != 400 {
		t.Error("deleting last administrator: status != 400")
	}
	pr := domain.RolePublicRelations
	if _, err := f.service.UpdateMunicipalityUser(ctx, admin.ID, MunicipalityUserUpdate{Role: &pr}); statusOf(t, err) != 400 {
		t.Error("demoting last administrator: status != 400")
	}

	f.users.add(&domain.User{ID: 2, Name: "Second", Email: "second@example.com", Role: domain.RoleAdministrator})
	if err := f.service.DeleteMunicipalityUser(ctx, admin.ID); err != nil {
		t.Fatalf("delete with a second administrator present: %v", err)
	}
}

func TestUpdateMunicipalityUserNormalizesEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	staff := f.users.add(&domain.User{ID: 1, Name: "Anna", Email: "anna@example.com", Role: domain.RolePublicRelations})
	f.users.add(&domain.User{ID: 2, Name: "Bruno", Email: "bruno@example.com", Role: domain.RoleTechnicalWater})

	padded := "  new.anna@example.com  "
	updated, err := f.service.UpdateMunicipalityUser(ctx, staff.ID, MunicipalityUserUpdate{Email: &padded})
	if err != nil {
		t.Fatalf("UpdateMunicipalityUser: %v", err)
	}
	if updated.Email != "new.anna@example.com" {
		t.Fatalf("email = %q, want trimmed value", updated.Email)
	}

	// The conflict check must run on the trimmed value.
	taken := "  BRUNO@example.com "
	if _, err := f.service.UpdateMunicipalityUser(ctx, staff.ID, MunicipalityUserUpdate{Email: &taken}); statusOf(t, err) != 409 {
		t.Error("padded taken email: status != 409")
	}

	blank := "   "
	if _, err := f.service.UpdateMunicipalityUser(ctx, staff.ID, MunicipalityUserUpdate{Email: &blank}); statusOf(t, err) != 400 {
		t.Error("blank email: status != 400")
	}
}

func TestGetMunicipalityUserHidesCitizens(t *testing.T) {
	f := newAccountFixture()
	citizen := f.users.add(&domain.User{ID: 1, Role: domain.RoleCitizen})
	if _, err := f.service.GetMunicipalityUser(context.Background(), citizen.ID); statusOf(t, err) != 404 {
		t.Error("citizen via admin endpoint: status != 404")
	}
}
