package user

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/pkg/crypto"
	"github.com/bookline/bookline_backend/pkg/email"
	"github.com/bookline/bookline_backend/pkg/util/password"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type stubMailer struct {
	sent []email.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupService(t *testing.T) (Service, *gorm.DB, *stubMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mailer := &stubMailer{}
	return New(db, mailer, testKey, "Bookline"), db, mailer
}

func seedUser(t *testing.T, db *gorm.DB, emailAddr, role string) uint {
	t.Helper()

	user := model.User{Email: emailAddr, PasswordHash: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := model.UserProfile{UserID: user.ID}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user.ID
}

func strptr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, db, mailer := setupService(t)

	res, err := svc.Create(context.Background(), CreateRequest{
		Email:    "amir@example.com",
		Password: "s3cret-pass",
		Role:     "regular",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.UserID == 0 {
		t.Fatal("expected a user id")
	}

	var user model.User
	if err := db.Preload("Profile").First(&user, res.UserID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Email != "amir@example.com" || user.Role != "regular" {
		t.Errorf("unexpected user row: %+v", user)
	}
	if !password.Match(user.PasswordHash, "s3cret-pass") {
		t.Error("stored hash does not verify against the password")
	}
	if user.Profile == nil {
		t.Fatal("expected an empty profile row to be created")
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 welcome email, got %d", len(mailer.sent))
	}
	if got := mailer.sent[0].To; len(got) != 1 || got[0] != "amir@example.com" {
		t.Errorf("welcome email to %v", got)
	}
}

func TestCreateInvalidRole(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Email: "x@example.com", Password: "pw", Role: "superuser",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, db, _ := setupService(t)
	seedUser(t, db, "taken@example.com", "regular")

	_, err := svc.Create(context.Background(), CreateRequest{
		Email: "taken@example.com", Password: "pw", Role: "regular",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateMailFailureIsNotFatal(t *testing.T) {
	svc, _, mailer := setupService(t)
	mailer.err = errors.New("smtp down")

	res, err := svc.Create(context.Background(), CreateRequest{
		Email: "quiet@example.com", Password: "pw", Role: "regular",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.UserID == 0 {
		t.Fatal("expected a user id despite mail failure")
	}
}

func TestGet(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "dana@example.com", "professional")
	if err := db.Model(&model.UserProfile{}).
		Where("user_id = ?", id).
		Update("bio", "Chartered physiotherapist").Error; err != nil {
		t.Fatalf("set bio: %v", err)
	}

	detail, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Email != "dana@example.com" || detail.Role != "professional" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if detail.Profile == nil || detail.Profile.Bio != "Chartered physiotherapist" {
		t.Errorf("unexpected profile: %+v", detail.Profile)
	}
}

func TestGetAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Get(context.Background(), 4242)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, db, _ := setupService(t)
	seedUser(t, db, "alice@corp.com", "regular")
	seedUser(t, db, "bob@corp.com", "professional")
	seedUser(t, db, "carol@home.net", "regular")

	tests := []struct {
		name   string
		email  *string
		role   *string
		expect []string
	}{
		{"all", nil, nil, []string{"alice@corp.com", "bob@corp.com", "carol@home.net"}},
		{"byEmail", strptr("corp"), nil, []string{"alice@corp.com", "bob@corp.com"}},
		{"byRole", nil, strptr("regular"), []string{"alice@corp.com", "carol@home.net"}},
		{"both", strptr("corp"), strptr("regular"), []string{"alice@corp.com"}},
		{"emptyStringsIgnored", strptr(""), strptr(""), []string{"alice@corp.com", "bob@corp.com", "carol@home.net"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tc.email, tc.role)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tc.expect) {
				t.Fatalf("expected %d users, got %d", len(tc.expect), len(got))
			}
			for i, u := range got {
				if u.Email != tc.expect[i] {
					t.Errorf("user %d: expected %s, got %s", i, tc.expect[i], u.Email)
				}
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "old@example.com", "regular")

	res, err := svc.Update(context.Background(), UpdateRequest{
		UserID:    id,
		Email:     strptr("new@example.com"),
		FirstName: strptr("Nora"),
		Bio:       strptr("Runner"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Email != "new@example.com" || res.FirstName != "Nora" || res.Bio != "Runner" {
		t.Errorf("unexpected result: %+v", res)
	}
	// Untouched fields keep their values.
	if res.LastName != "" {
		t.Errorf("expected empty last name, got %q", res.LastName)
	}

	var user model.User
	if err := db.Preload("Profile").First(&user, id).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Email != "new@example.com" || user.Profile.FirstName != "Nora" {
		t.Errorf("row not updated: %+v %+v", user, user.Profile)
	}
}

func TestUpdateSkipsNilAndEmpty(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "keep@example.com", "regular")
	if err := db.Model(&model.UserProfile{}).
		Where("user_id = ?", id).
		Update("first_name", "Original").Error; err != nil {
		t.Fatalf("seed name: %v", err)
	}

	// Empty strings behave like absent fields.
	res, err := svc.Update(context.Background(), UpdateRequest{
		UserID:    id,
		Email:     strptr(""),
		FirstName: strptr(""),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Email != "keep@example.com" || res.FirstName != "Original" {
		t.Errorf("fields were overwritten: %+v", res)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "pw@example.com", "regular")

	if _, err := svc.Update(context.Background(), UpdateRequest{
		UserID:   id,
		Password: strptr("brand-new-pw"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !password.Match(user.PasswordHash, "brand-new-pw") {
		t.Error("new password hash does not verify")
	}
}

func TestUpdatePhone(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "phone@example.com", "regular")
	if err := db.Model(&model.UserProfile{}).
		Where("user_id = ?", id).
		Update("phone_verified", true).Error; err != nil {
		t.Fatalf("seed verified: %v", err)
	}

	if _, err := svc.Update(context.Background(), UpdateRequest{
		UserID: id,
		Phone:  strptr("+1 415 555 2671"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var profile model.UserProfile
	if err := db.Where("user_id = ?", id).First(&profile).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	plain, err := crypto.Decrypt(testKey, profile.Phone)
	if err != nil {
		t.Fatalf("decrypt phone: %v", err)
	}
	if plain != "+14155552671" {
		t.Errorf("expected E.164 +14155552671, got %q", plain)
	}
	if profile.PhoneHash != crypto.Hash("+14155552671") {
		t.Error("phone hash does not match the E.164 digest")
	}
	if profile.PhoneVerified {
		t.Error("changing the number must reset verification")
	}
}

func TestUpdateInvalidPhone(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "badphone@example.com", "regular")

	_, err := svc.Update(context.Background(), UpdateRequest{
		UserID: id,
		Phone:  strptr("not-a-number"),
	})
	if !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestUpdateAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Update(context.Background(), UpdateRequest{
		UserID: 4242,
		Email:  strptr("ghost@example.com"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, db, _ := setupService(t)

	// A professional user with rows in every dependent table, plus a second
	// user whose data must survive.
	id := seedUser(t, db, "leaving@example.com", "professional")
	otherID := seedUser(t, db, "staying@example.com", "regular")

	var profile model.UserProfile
	if err := db.Where("user_id = ?", id).First(&profile).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	prof := model.ProfessionalProfile{ProfileID: profile.ID, Qualifications: "MSc"}
	if err := db.Create(&prof).Error; err != nil {
		t.Fatalf("create professional: %v", err)
	}

	seed := []any{
		&model.Appointment{UserID: id, ProfessionalID: prof.ID, Status: "PENDING"},
		&model.Appointment{UserID: otherID, ProfessionalID: prof.ID, Status: "PENDING"},
		&model.Notification{UserID: id, Message: "hello"},
		&model.Notification{UserID: otherID, Message: "kept"},
		&model.Review{UserID: id, ProfessionalID: prof.ID, Rating: 5},
		&model.Review{UserID: otherID, ProfessionalID: prof.ID, Rating: 3},
		&model.UserSession{UserID: id, SessionID: "sess-gone"},
		&model.UserSession{UserID: otherID, SessionID: "sess-kept"},
		&model.Availability{ProfessionalID: prof.ID, IsAvailable: true},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	res, err := svc.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Message != "User and related data deleted successfully." {
		t.Errorf("unexpected message: %q", res.Message)
	}

	counts := []struct {
		name  string
		model any
		want  int64
	}{
		{"users", &model.User{}, 1},
		{"profiles", &model.UserProfile{}, 1},
		{"professionals", &model.ProfessionalProfile{}, 0},
		{"availabilities", &model.Availability{}, 0},
		// The other user's appointment with this professional is swept by
		// the professional-side delete.
		{"appointments", &model.Appointment{}, 0},
		{"notifications", &model.Notification{}, 1},
		{"reviews", &model.Review{}, 0},
		{"sessions", &model.UserSession{}, 1},
	}
	for _, c := range counts {
		var n int64
		if err := db.Model(c.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", c.name, err)
		}
		if n != c.want {
			t.Errorf("%s: expected %d rows left, got %d", c.name, c.want, n)
		}
	}

	var kept model.User
	if err := db.First(&kept, otherID).Error; err != nil {
		t.Errorf("surviving user is gone: %v", err)
	}
}

func TestDeleteRegularUserKeepsProfessionals(t *testing.T) {
	svc, db, _ := setupService(t)
	id := seedUser(t, db, "plain@example.com", "regular")

	res, err := svc.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Message != "User and related data deleted successfully." {
		t.Errorf("unexpected message: %q", res.Message)
	}

	var users, profiles int64
	db.Model(&model.User{}).Count(&users)
	db.Model(&model.UserProfile{}).Count(&profiles)
	if users != 0 || profiles != 0 {
		t.Errorf("expected empty tables, got %d users %d profiles", users, profiles)
	}
}

func TestDeleteAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	res, err := svc.Delete(context.Background(), 4242)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Message != "User does not exist." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}
