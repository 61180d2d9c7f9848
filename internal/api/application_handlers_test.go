package api

import (
	"net/http"
	"testing"

	"github.com/terraincognita07/cvagent/internal/models"
)

func validApplicationBody(personID uint) map[string]any {
	return map[string]any{
		"person_id": personID,
		"competencies": []map[string]any{
			{"name": "ticket sales", "years_of_experience": 2.5},
			{"name": "lotteries", "years_of_experience": 0},
		},
		"availabilities": []map[string]string{
			{"from_date": "2026-06-01", "to_date": "2026-06-30"},
			{"from_date": "2026-08-01", "to_date": "2026-08-15"},
		},
	}
}

func countRows(t *testing.T, env *testApp, model any, personID uint) int64 {
	t.Helper()
	var count int64
	if err := env.database.Model(model).Where("person_id = ?", personID).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func TestCompetenciesListsCatalog(t *testing.T) {
	env := newTestApp(t)

	response := env.do(t, http.MethodGet, "/api/competencies", nil, "")
	assertStatus(t, response, http.StatusOK)

	payload := decodeBody[[]competenceResponse](t, response.Body)
	if len(payload) != len(models.DefaultCompetenceCatalog) {
		t.Fatalf("expected %d competencies, got %d", len(models.DefaultCompetenceCatalog), len(payload))
	}
}

func TestCompetenciesEmptyCatalogIsNotFound(t *testing.T) {
	env := newTestApp(t)
	if err := env.database.Exec("DELETE FROM competences").Error; err != nil {
		t.Fatalf("clear catalog: %v", err)
	}

	assertStatus(t, env.do(t, http.MethodGet, "/api/competencies", nil, ""), http.StatusNotFound)
}

func TestCreateApplicationStoresSnapshot(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	cookie := env.login(t, "applicant1")

	response := env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), cookie)
	assertStatus(t, response, http.StatusCreated)

	payload := decodeBody[applicationResponse](t, response.Body)
	if payload.Status != models.StatusUnhandled {
		t.Fatalf("expected status unhandled, got %q", payload.Status)
	}
	if len(payload.Competencies) != 2 || len(payload.Availabilities) != 2 {
		t.Fatalf("expected 2 competencies and 2 availabilities, got %d and %d", len(payload.Competencies), len(payload.Availabilities))
	}

	current := env.do(t, http.MethodPost, "/api/userApplication", map[string]any{"person_id": applicant.ID}, cookie)
	assertStatus(t, current, http.StatusOK)

	competencies := env.do(t, http.MethodPost, "/api/userCompetencies", map[string]any{"person_id": applicant.ID}, cookie)
	assertStatus(t, competencies, http.StatusOK)
	if entries := decodeBody[[]userCompetenceResponse](t, competencies.Body); len(entries) != 2 {
		t.Fatalf("expected 2 stored competencies, got %d", len(entries))
	}
}

func TestCreateApplicationRejectsInvalidSubmissionsWithoutWriting(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	cookie := env.login(t, "applicant1")

	tests := []struct {
		name       string
		mutate     func(body map[string]any)
		wantStatus int
		wantField  string
	}{
		{
			name:       "no competencies",
			mutate:     func(body map[string]any) { body["competencies"] = []map[string]any{} },
			wantStatus: http.StatusBadRequest,
			wantField:  "competencies",
		},
		{
			name:       "no availabilities",
			mutate:     func(body map[string]any) { body["availabilities"] = []map[string]string{} },
			wantStatus: http.StatusBadRequest,
			wantField:  "availabilities",
		},
		{
			name: "unknown competence",
			mutate: func(body map[string]any) {
				body["competencies"] = []map[string]any{{"name": "juggling", "years_of_experience": 1}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "competencies[0].name",
		},
		{
			name: "negative experience",
			mutate: func(body map[string]any) {
				body["competencies"] = []map[string]any{{"name": "lotteries", "years_of_experience": -1}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "competencies[0].years_of_experience",
		},
		{
			name: "reversed interval",
			mutate: func(body map[string]any) {
				body["availabilities"] = []map[string]string{{"from_date": "2026-06-30", "to_date": "2026-06-01"}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "availabilities[0].to_date",
		},
		{
			name: "bad date",
			mutate: func(body map[string]any) {
				body["availabilities"] = []map[string]string{{"from_date": "2026-13-01", "to_date": "2026-12-01"}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "availabilities[0].from_date",
		},
		{
			name: "overlapping intervals",
			mutate: func(body map[string]any) {
				body["availabilities"] = []map[string]string{
					{"from_date": "2026-06-01", "to_date": "2026-06-30"},
					{"from_date": "2026-06-30", "to_date": "2026-07-10"},
				}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "availabilities",
		},
		{
			name: "missing years",
			mutate: func(body map[string]any) {
				body["competencies"] = []map[string]any{{"name": "lotteries"}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "competencies[0].years_of_experience",
		},
		{
			name:       "unknown top level field",
			mutate:     func(body map[string]any) { body["status"] = "accepted" },
			wantStatus: http.StatusBadRequest,
			wantField:  "status",
		},
	}

	for _, test := range tests {
		body := validApplicationBody(applicant.ID)
		test.mutate(body)

		response := env.do(t, http.MethodPost, "/api/createApplication", body, cookie)
		assertStatus(t, response, test.wantStatus)
		if field := readAPIError(t, response.Body).Field; field != test.wantField {
			t.Fatalf("%s: expected field %q, got %q", test.name, test.wantField, field)
		}
	}

	if count := countRows(t, env, &models.UserCompetence{}, applicant.ID); count != 0 {
		t.Fatalf("expected no stored competencies, got %d", count)
	}
	if count := countRows(t, env, &models.Availability{}, applicant.ID); count != 0 {
		t.Fatalf("expected no stored availability, got %d", count)
	}
	if count := countRows(t, env, &models.Application{}, applicant.ID); count != 0 {
		t.Fatalf("expected no stored application, got %d", count)
	}
}

func TestCreateApplicationResubmitReplacesAndResetsStatus(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	env.createPerson(t, "recruiter1", models.RoleRecruiter)
	applicantCookie := env.login(t, "applicant1")
	recruiterCookie := env.login(t, "recruiter1")

	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), applicantCookie), http.StatusCreated)
	assertStatus(t, env.do(t, http.MethodPost, "/api/updateApplicationStatus", map[string]any{
		"person_id": applicant.ID,
		"status":    models.StatusAccepted,
	}, recruiterCookie), http.StatusOK)

	body := validApplicationBody(applicant.ID)
	body["competencies"] = []map[string]any{{"name": "roller coaster operation", "years_of_experience": 4}}
	body["availabilities"] = []map[string]string{{"from_date": "2026-09-01", "to_date": "2026-09-30"}}
	response := env.do(t, http.MethodPost, "/api/createApplication", body, applicantCookie)
	assertStatus(t, response, http.StatusCreated)

	payload := decodeBody[applicationResponse](t, response.Body)
	if payload.Status != models.StatusUnhandled {
		t.Fatalf("expected status reset to unhandled, got %q", payload.Status)
	}
	if len(payload.Competencies) != 1 || payload.Competencies[0].Name != "roller coaster operation" {
		t.Fatalf("expected replaced competencies, got %+v", payload.Competencies)
	}
	if len(payload.Availabilities) != 1 || payload.Availabilities[0].FromDate != "2026-09-01" {
		t.Fatalf("expected replaced availability, got %+v", payload.Availabilities)
	}
}

func TestUserApplicationMissingIsNotFound(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	cookie := env.login(t, "applicant1")

	response := env.do(t, http.MethodPost, "/api/userApplication", map[string]any{"person_id": applicant.ID}, cookie)
	assertStatus(t, response, http.StatusNotFound)
}

func TestAddAvailabilityGrowsSetAndRejectsOverlap(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	cookie := env.login(t, "applicant1")

	first := env.do(t, http.MethodPost, "/api/addAvailability", map[string]any{
		"person_id": applicant.ID,
		"from_date": "2026-06-01",
		"to_date":   "2026-06-10",
	}, cookie)
	assertStatus(t, first, http.StatusCreated)

	second := env.do(t, http.MethodPost, "/api/addAvailability", map[string]any{
		"person_id": applicant.ID,
		"from_date": "2026-06-11",
		"to_date":   "2026-06-20",
	}, cookie)
	assertStatus(t, second, http.StatusCreated)
	if entries := decodeBody[[]availabilityResponse](t, second.Body); len(entries) != 2 {
		t.Fatalf("expected 2 availability periods, got %d", len(entries))
	}

	overlap := env.do(t, http.MethodPost, "/api/addAvailability", map[string]any{
		"person_id": applicant.ID,
		"from_date": "2026-06-05",
		"to_date":   "2026-06-12",
	}, cookie)
	assertStatus(t, overlap, http.StatusBadRequest)
	if field := readAPIError(t, overlap.Body).Field; field != "availabilities" {
		t.Fatalf("expected availabilities field, got %q", field)
	}
	if count := countRows(t, env, &models.Availability{}, applicant.ID); count != 2 {
		t.Fatalf("expected 2 stored periods after overlap, got %d", count)
	}

	missing := env.do(t, http.MethodPost, "/api/addAvailability", map[string]any{
		"person_id": applicant.ID,
		"from_date": "2026-07-01",
	}, cookie)
	assertStatus(t, missing, http.StatusBadRequest)
	if field := readAPIError(t, missing.Body).Field; field != "to_date" {
		t.Fatalf("expected to_date field, got %q", field)
	}
}

func TestDeleteRoutesAreIdempotent(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	cookie := env.login(t, "applicant1")
	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), cookie), http.StatusCreated)

	for attempt := 0; attempt < 2; attempt++ {
		assertStatus(t, env.do(t, http.MethodPost, "/api/deleteCompetence", map[string]any{"person_id": applicant.ID}, cookie), http.StatusCreated)
		assertStatus(t, env.do(t, http.MethodPost, "/api/deleteAvailability", map[string]any{"person_id": applicant.ID}, cookie), http.StatusCreated)
	}

	if count := countRows(t, env, &models.UserCompetence{}, applicant.ID); count != 0 {
		t.Fatalf("expected competencies deleted, got %d", count)
	}
	if count := countRows(t, env, &models.Availability{}, applicant.ID); count != 0 {
		t.Fatalf("expected availability deleted, got %d", count)
	}
}

func TestUpdateApplicationStatusTransitions(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	other := env.createPerson(t, "applicant2", models.RoleApplicant)
	env.createPerson(t, "recruiter1", models.RoleRecruiter)
	applicantCookie := env.login(t, "applicant1")
	recruiterCookie := env.login(t, "recruiter1")
	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), applicantCookie), http.StatusCreated)

	update := func(personID uint, status string) *http.Response {
		return env.do(t, http.MethodPost, "/api/updateApplicationStatus", map[string]any{
			"person_id": personID,
			"status":    status,
		}, recruiterCookie)
	}

	accepted := update(applicant.ID, models.StatusAccepted)
	assertStatus(t, accepted, http.StatusOK)
	if payload := decodeBody[applicationResponse](t, accepted.Body); payload.Status != models.StatusAccepted {
		t.Fatalf("expected accepted, got %q", payload.Status)
	}

	assertStatus(t, update(applicant.ID, models.StatusAccepted), http.StatusConflict)
	assertStatus(t, update(applicant.ID, models.StatusRejected), http.StatusOK)
	assertStatus(t, update(other.ID, models.StatusAccepted), http.StatusNotFound)

	invalid := update(applicant.ID, "hired")
	assertStatus(t, invalid, http.StatusBadRequest)
	if field := readAPIError(t, invalid.Body).Field; field != "status" {
		t.Fatalf("expected status field, got %q", field)
	}
}

func TestApplicantProfilesListsSubmittedApplications(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	env.createPerson(t, "applicant2", models.RoleApplicant)
	env.createPerson(t, "recruiter1", models.RoleRecruiter)
	applicantCookie := env.login(t, "applicant1")
	recruiterCookie := env.login(t, "recruiter1")
	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), applicantCookie), http.StatusCreated)

	response := env.do(t, http.MethodGet, "/api/applicantProfiles", nil, recruiterCookie)
	assertStatus(t, response, http.StatusOK)

	profiles := decodeBody[[]applicantProfileResponse](t, response.Body)
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	profile := profiles[0]
	if profile.Person.ID != applicant.ID || profile.Status != models.StatusUnhandled {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if len(profile.Competencies) != 2 || len(profile.Availabilities) != 2 {
		t.Fatalf("expected full profile, got %d competencies and %d periods", len(profile.Competencies), len(profile.Availabilities))
	}
}

func TestUpdateCompetenciesReplacesOnlyThatSet(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	env.createPerson(t, "recruiter1", models.RoleRecruiter)
	cookie := env.login(t, "applicant1")
	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), cookie), http.StatusCreated)
	assertStatus(t, env.do(t, http.MethodPost, "/api/updateApplicationStatus", map[string]any{
		"person_id": applicant.ID,
		"status":    models.StatusAccepted,
	}, env.login(t, "recruiter1")), http.StatusOK)

	response := env.do(t, http.MethodPost, "/api/updateCompetencies", map[string]any{
		"person_id":    applicant.ID,
		"competencies": []map[string]any{{"name": "Roller Coaster Operation", "years_of_experience": 3}},
	}, cookie)
	assertStatus(t, response, http.StatusCreated)
	entries := decodeBody[[]userCompetenceResponse](t, response.Body)
	if len(entries) != 1 || entries[0].Name != "roller coaster operation" {
		t.Fatalf("expected the replaced competence, got %+v", entries)
	}
	if count := countRows(t, env, &models.Availability{}, applicant.ID); count != 2 {
		t.Fatalf("expected availability untouched, got %d periods", count)
	}

	application := decodeBody[applicationResponse](t, env.do(t, http.MethodPost, "/api/userApplication", map[string]any{"person_id": applicant.ID}, cookie).Body)
	if application.Status != models.StatusAccepted {
		t.Fatalf("expected review status untouched, got %q", application.Status)
	}

	unknown := env.do(t, http.MethodPost, "/api/updateCompetencies", map[string]any{
		"person_id":    applicant.ID,
		"competencies": []map[string]any{{"name": "juggling", "years_of_experience": 1}},
	}, cookie)
	assertStatus(t, unknown, http.StatusBadRequest)
	if field := readAPIError(t, unknown.Body).Field; field != "competencies[0].name" {
		t.Fatalf("expected competencies[0].name field, got %q", field)
	}
	if count := countRows(t, env, &models.UserCompetence{}, applicant.ID); count != 1 {
		t.Fatalf("expected rejected update to leave 1 competence, got %d", count)
	}
}

func TestUpdateAvailabilityReplacesOnlyThatSet(t *testing.T) {
	env := newTestApp(t)
	applicant := env.createPerson(t, "applicant1", models.RoleApplicant)
	other := env.createPerson(t, "applicant2", models.RoleApplicant)
	cookie := env.login(t, "applicant1")
	assertStatus(t, env.do(t, http.MethodPost, "/api/createApplication", validApplicationBody(applicant.ID), cookie), http.StatusCreated)

	overlap := env.do(t, http.MethodPost, "/api/updateAvailability", map[string]any{
		"person_id": applicant.ID,
		"availabilities": []map[string]string{
			{"from_date": "2026-10-01", "to_date": "2026-10-10"},
			{"from_date": "2026-10-10", "to_date": "2026-10-20"},
		},
	}, cookie)
	assertStatus(t, overlap, http.StatusBadRequest)
	if field := readAPIError(t, overlap.Body).Field; field != "availabilities" {
		t.Fatalf("expected availabilities field, got %q", field)
	}
	if count := countRows(t, env, &models.Availability{}, applicant.ID); count != 2 {
		t.Fatalf("expected rejected update to keep 2 periods, got %d", count)
	}

	response := env.do(t, http.MethodPost, "/api/updateAvailability", map[string]any{
		"person_id":      applicant.ID,
		"availabilities": []map[string]string{{"from_date": "2026-10-01", "to_date": "2026-10-31"}},
	}, cookie)
	assertStatus(t, response, http.StatusCreated)
	entries := decodeBody[[]availabilityResponse](t, response.Body)
	if len(entries) != 1 || entries[0].FromDate != "2026-10-01" || entries[0].ToDate != "2026-10-31" {
		t.Fatalf("expected the replaced period, got %+v", entries)
	}
	if count := countRows(t, env, &models.UserCompetence{}, applicant.ID); count != 2 {
		t.Fatalf("expected competencies untouched, got %d", count)
	}

	forbidden := env.do(t, http.MethodPost, "/api/updateAvailability", map[string]any{
		"person_id":      other.ID,
		"availabilities": []map[string]string{{"from_date": "2026-10-01", "to_date": "2026-10-31"}},
	}, cookie)
	assertStatus(t, forbidden, http.StatusForbidden)
}
