package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
)

type stubPersonRepo struct {
	mu      sync.Mutex
	persons map[uint]models.Person
	nextID  uint
	findErr error
}

func newStubPersonRepo(persons ...models.Person) *stubPersonRepo {
	repo := &stubPersonRepo{persons: make(map[uint]models.Person)}
	for _, person := range persons {
		repo.persons[person.ID] = person
		if person.ID > repo.nextID {
			repo.nextID = person.ID
		}
	}
	return repo
}

func (repo *stubPersonRepo) FindByID(_ context.Context, personID uint) (models.Person, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.findErr != nil {
		return models.Person{}, false, repo.findErr
	}
	person, ok := repo.persons[personID]
	return person, ok, nil
}

func (repo *stubPersonRepo) FindByUsername(_ context.Context, username string) (models.Person, bool, error) {
	return repo.findWhere(func(person models.Person) bool {
		return models.StringValue(person.Username) == username
	})
}

func (repo *stubPersonRepo) FindByNormalizedEmail(_ context.Context, email string) (models.Person, bool, error) {
	return repo.findWhere(func(person models.Person) bool {
		return strings.ToLower(strings.TrimSpace(models.StringValue(person.Email))) == email
	})
}

func (repo *stubPersonRepo) FindPendingLegacyByEmail(_ context.Context, email string) (models.Person, bool, error) {
	return repo.findWhere(func(person models.Person) bool {
		return strings.ToLower(models.StringValue(person.Email)) == email &&
			person.Role == models.RoleApplicant &&
			!person.HasCredentials()
	})
}

func (repo *stubPersonRepo) findWhere(match func(models.Person) bool) (models.Person, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.findErr != nil {
		return models.Person{}, false, repo.findErr
	}
	for _, person := range repo.persons {
		if match(person) {
			return person, true, nil
		}
	}
	return models.Person{}, false, nil
}

func (repo *stubPersonRepo) Create(_ context.Context, person *models.Person) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.nextID++
	person.ID = repo.nextID
	repo.persons[person.ID] = *person
	return nil
}

func (repo *stubPersonRepo) UpdateCredentials(_ context.Context, personID uint, username string, passwordHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	person, ok := repo.persons[personID]
	if !ok || person.HasCredentials() {
		return gorm.ErrRecordNotFound
	}
	person.Username = models.StringPointer(username)
	person.PasswordHash = passwordHash
	repo.persons[personID] = person
	return nil
}

func (repo *stubPersonRepo) UpdatePassword(_ context.Context, personID uint, passwordHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	person, ok := repo.persons[personID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	person.PasswordHash = passwordHash
	repo.persons[personID] = person
	return nil
}

func (repo *stubPersonRepo) UpdateContact(_ context.Context, personID uint, email string, personalNumber string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	person, ok := repo.persons[personID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	person.Email = models.StringPointer(email)
	person.PersonalNumber = models.StringPointer(personalNumber)
	repo.persons[personID] = person
	return nil
}

type stubApplicationRepo struct {
	catalog        []models.Competence
	competencies   map[uint][]models.UserCompetence
	availabilities map[uint][]models.Availability
	applications   map[uint]models.Application
	replaceErr     error
	replaceCalls   int
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{
		catalog: []models.Competence{
			{ID: 1, Name: "ticket sales"},
			{ID: 2, Name: "lotteries"},
			{ID: 3, Name: "roller coaster operation"},
		},
		competencies:   make(map[uint][]models.UserCompetence),
		availabilities: make(map[uint][]models.Availability),
		applications:   make(map[uint]models.Application),
	}
}

func (repo *stubApplicationRepo) ListCompetencies(context.Context) ([]models.Competence, error) {
	return append([]models.Competence(nil), repo.catalog...), nil
}

func (repo *stubApplicationRepo) ListUserCompetencies(_ context.Context, personID uint) ([]models.UserCompetence, error) {
	return append([]models.UserCompetence{}, repo.competencies[personID]...), nil
}

func (repo *stubApplicationRepo) ListAvailability(_ context.Context, personID uint) ([]models.Availability, error) {
	return append([]models.Availability{}, repo.availabilities[personID]...), nil
}

func (repo *stubApplicationRepo) ReplaceApplication(_ context.Context, personID uint, competencies []models.UserCompetence, availabilities []models.Availability, submittedAt time.Time) (models.Application, error) {
	repo.replaceCalls++
	if repo.replaceErr != nil {
		return models.Application{}, repo.replaceErr
	}
	repo.competencies[personID] = append([]models.UserCompetence(nil), competencies...)
	repo.availabilities[personID] = append([]models.Availability(nil), availabilities...)
	application := models.Application{PersonID: personID, Status: models.StatusUnhandled, SubmittedAt: submittedAt, UpdatedAt: submittedAt}
	repo.applications[personID] = application
	return application, nil
}

func (repo *stubApplicationRepo) ReplaceUserCompetencies(_ context.Context, personID uint, competencies []models.UserCompetence) error {
	repo.replaceCalls++
	if repo.replaceErr != nil {
		return repo.replaceErr
	}
	repo.competencies[personID] = append([]models.UserCompetence(nil), competencies...)
	return nil
}

func (repo *stubApplicationRepo) ReplaceUserAvailability(_ context.Context, personID uint, availabilities []models.Availability) error {
	repo.replaceCalls++
	if repo.replaceErr != nil {
		return repo.replaceErr
	}
	repo.availabilities[personID] = append([]models.Availability(nil), availabilities...)
	return nil
}

func (repo *stubApplicationRepo) AddAvailability(_ context.Context, entry *models.Availability, guard func([]models.Availability) error) error {
	if guard != nil {
		if err := guard(repo.availabilities[entry.PersonID]); err != nil {
			return err
		}
	}
	repo.availabilities[entry.PersonID] = append(repo.availabilities[entry.PersonID], *entry)
	return nil
}

func (repo *stubApplicationRepo) DeleteUserCompetencies(_ context.Context, personID uint) error {
	delete(repo.competencies, personID)
	return nil
}

func (repo *stubApplicationRepo) DeleteAvailability(_ context.Context, personID uint) error {
	delete(repo.availabilities, personID)
	return nil
}

func (repo *stubApplicationRepo) FindApplication(_ context.Context, personID uint) (models.Application, bool, error) {
	application, ok := repo.applications[personID]
	return application, ok, nil
}

func (repo *stubApplicationRepo) UpdateStatus(_ context.Context, personID uint, status string, updatedAt time.Time) error {
	application, ok := repo.applications[personID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	application.Status = status
	application.UpdatedAt = updatedAt
	repo.applications[personID] = application
	return nil
}

func (repo *stubApplicationRepo) ListApplicantProfiles(context.Context) ([]models.Person, error) {
	return nil, nil
}

type memoryPasscodeStore struct {
	mu         sync.Mutex
	challenges map[string]models.PasscodeChallenge
}

func newMemoryPasscodeStore() *memoryPasscodeStore {
	return &memoryPasscodeStore{challenges: make(map[string]models.PasscodeChallenge)}
}

func (store *memoryPasscodeStore) Save(_ context.Context, challenge models.PasscodeChallenge) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.challenges[challenge.Email] = challenge
	return nil
}

func (store *memoryPasscodeStore) Find(_ context.Context, email string) (models.PasscodeChallenge, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	challenge, ok := store.challenges[email]
	return challenge, ok, nil
}

func (store *memoryPasscodeStore) ReserveAttempt(_ context.Context, email string, maxAttempts int) (int, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	challenge, ok := store.challenges[email]
	if !ok || challenge.Attempts >= maxAttempts {
		return 0, false, nil
	}
	challenge.Attempts++
	store.challenges[email] = challenge
	return challenge.Attempts, true, nil
}

func (store *memoryPasscodeStore) UpdateState(_ context.Context, email string, state string, resetAttempts bool, updatedAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	challenge, ok := store.challenges[email]
	if !ok {
		return nil
	}
	challenge.State = state
	challenge.UpdatedAt = updatedAt
	if resetAttempts {
		challenge.Attempts = 0
	}
	store.challenges[email] = challenge
	return nil
}

func (store *memoryPasscodeStore) Delete(_ context.Context, email string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.challenges, email)
	return nil
}

func (store *memoryPasscodeStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var purged int64
	for email, challenge := range store.challenges {
		if challenge.Expired(now) {
			delete(store.challenges, email)
			purged++
		}
	}
	return purged, nil
}

type recordingNotifier struct {
	sent []PasscodeNotification
	err  error
}

func (notifier *recordingNotifier) SendPasscode(_ context.Context, notification PasscodeNotification) error {
	if notifier.err != nil {
		return notifier.err
	}
	notifier.sent = append(notifier.sent, notification)
	return nil
}
