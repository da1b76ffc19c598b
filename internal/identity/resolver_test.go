package identity

import (
	"context"
	"testing"

	"telehealth-backend/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeDoctorProfileRepo struct {
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func (r *fakeDoctorProfileRepo) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeDoctorProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return r.profiles[userID], nil
}

func (r *fakeDoctorProfileRepo) FindAll(db *gorm.DB) ([]entity.DoctorProfile, error) {
	var out []entity.DoctorProfile
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeDoctorProfileRepo) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

type fakePatientProfileRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func (r *fakePatientProfileRepo) Create(db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakePatientProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	return r.profiles[userID], nil
}

func (r *fakePatientProfileRepo) Update(db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func newResolverFixture(t *testing.T) (Resolver, *fakeDoctorProfileRepo, *fakePatientProfileRepo) {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	doctors := &fakeDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}}
	patients := &fakePatientProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}}
	return NewResolver(db, doctors, patients), doctors, patients
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("doctor profile wins", func(t *testing.T) {
		resolver, doctors, _ := newResolverFixture(t)
		userID := uuid.New()
		doctors.profiles[userID] = &entity.DoctorProfile{UserID: userID}

		caller, err := resolver.Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, Caller{UserID: userID, Kind: KindDoctor}, caller)
		assert.True(t, caller.IsDoctor())
		assert.False(t, caller.IsPatient())
	})

	t.Run("patient profile", func(t *testing.T) {
		resolver, _, patients := newResolverFixture(t)
		userID := uuid.New()
		patients.profiles[userID] = &entity.PatientProfile{UserID: userID}

		caller, err := resolver.Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, KindPatient, caller.Kind)
		assert.True(t, caller.IsPatient())
	})

	t.Run("no profile resolves to unknown", func(t *testing.T) {
		resolver, _, _ := newResolverFixture(t)
		userID := uuid.New()

		caller, err := resolver.Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, KindUnknown, caller.Kind)
		assert.False(t, caller.IsDoctor())
		assert.False(t, caller.IsPatient())
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "doctor", KindDoctor.String())
	assert.Equal(t, "patient", KindPatient.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
