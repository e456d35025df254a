package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/meeting"
	"github.com/hireloop/portal-api/internal/core/notification"
	"github.com/hireloop/portal-api/internal/core/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hrPrincipal = auth.Principal{UID: "hr-1", Email: "hr@acme.test", Role: user.RoleCompany, CompanyID: "C1", CompanyRole: user.CompanyRoleOwner}

type stubAuth struct {
	principal auth.Principal
	identity  auth.Identity
	err       error
}

func (s *stubAuth) Identify(_ context.Context, authorization string) (auth.Identity, error) {
	if authorization == "" {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return s.identity, s.err
}

func (s *stubAuth) Authenticate(_ context.Context, authorization string) (auth.Principal, error) {
	if authorization == "" {
		return auth.Principal{}, auth.ErrUnauthenticated
	}
	return s.principal, s.err
}

type stubApplications struct {
	application.UseCase

	changeIn  application.ChangeStatusInput
	changeP   auth.Principal
	changeErr error

	listIn  application.ListByCompanyInput
	listOut []*application.Application

	columns []application.Column
}

func (s *stubApplications) ChangeStatus(_ context.Context, p auth.Principal, in application.ChangeStatusInput) (*application.Application, error) {
	s.changeP = p
	s.changeIn = in
	if s.changeErr != nil {
		return nil, s.changeErr
	}
	return &application.Application{ID: in.ID, Status: application.Status(in.Status)}, nil
}

func (s *stubApplications) ListByCompany(_ context.Context, _ auth.Principal, in application.ListByCompanyInput) ([]*application.Application, error) {
	s.listIn = in
	return s.listOut, nil
}

func (s *stubApplications) Pipeline(_ context.Context, _ auth.Principal, _ string) ([]application.Column, error) {
	return s.columns, nil
}

type stubNotifications struct {
	notification.UseCase

	listIn  notification.ListInput
	listOut *notification.ListResult
	readErr error
}

func (s *stubNotifications) ListForUser(_ context.Context, _ auth.Principal, in notification.ListInput) (*notification.ListResult, error) {
	s.listIn = in
	return s.listOut, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, _ auth.Principal, _ string) error {
	return s.readErr
}

type stubCompanies struct {
	company.UseCase

	rejectIn  company.RejectInput
	rejectErr error
}

func (s *stubCompanies) Reject(_ context.Context, _ auth.Principal, in company.RejectInput) error {
	s.rejectIn = in
	return s.rejectErr
}

type stubEmployees struct {
	in employee.ListEmployeesInput
}

func (s *stubEmployees) ListEmployees(_ context.Context, _ auth.Principal, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	s.in = in
	return &employee.ListEmployeesResult{
		Employees:     []*employee.Employee{{CompanyID: in.CompanyID, UserID: "u1", Name: "Sam", CompanyRole: user.CompanyRoleEmployee}},
		NextPageToken: "1",
	}, nil
}

type stubMeetings struct {
	meeting.UseCase

	approveIn  meeting.ApproveInput
	approveErr error
}

func (s *stubMeetings) Approve(_ context.Context, _ auth.Principal, in meeting.ApproveInput) (*meeting.Request, error) {
	s.approveIn = in
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return &meeting.Request{ID: in.ID, Status: meeting.StatusApproved, ScheduledStart: &start, JoinURL: "https://zoom.test/j/1"}, nil
}

type stubUsers struct {
	registerIn  user.RegisterInput
	registerErr error
	found       *user.User
	updateIn    user.UpdateProfileInput
	updateErr   error
}

func (s *stubUsers) Register(_ context.Context, in user.RegisterInput) (*user.User, error) {
	s.registerIn = in
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &user.User{ID: in.ID, Email: in.Email, Name: in.Name, Role: in.Role}, nil
}

func (s *stubUsers) GetUser(_ context.Context, in user.GetUserInput) (*user.User, error) {
	if s.found == nil || s.found.ID != in.ID {
		return nil, user.ErrUserNotFound
	}
	return s.found, nil
}

func (s *stubUsers) UpdateProfile(_ context.Context, in user.UpdateProfileInput) (*user.User, error) {
	s.updateIn = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &user.User{ID: in.ID, Name: in.Name, Role: user.RoleCompany}, nil
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type fixture struct {
	auth          *stubAuth
	users         *stubUsers
	applications  *stubApplications
	notifications *stubNotifications
	companies     *stubCompanies
	employees     *stubEmployees
	meetings      *stubMeetings
	router        http.Handler
}

func newFixture(p auth.Principal) *fixture {
	f := &fixture{
		auth:          &stubAuth{principal: p},
		users:         &stubUsers{},
		applications:  &stubApplications{},
		notifications: &stubNotifications{},
		companies:     &stubCompanies{},
		employees:     &stubEmployees{},
		meetings:      &stubMeetings{},
	}
	f.router = NewRouter(Services{
		Auth:          f.auth,
		Users:         f.users,
		Applications:  f.applications,
		Notifications: f.notifications,
		Companies:     f.companies,
		Employees:     f.employees,
		Meetings:      f.meetings,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := NewRouter(Services{Auth: &stubAuth{}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHealth_StoreDown(t *testing.T) {
	t.Parallel()

	router := NewRouter(Services{Auth: &stubAuth{}, Pinger: stubPinger{err: errors.New("down")}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/applications/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeBody(t, rec)["error"])
}

func TestChangeStatus_PassesPrincipalAndBody(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	rec := f.do(t, http.MethodPut, "/applications/app-1/status", `{"status":"Hired"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	assert.Equal(t, "app-1", f.applications.changeIn.ID)
	assert.Equal(t, "Hired", f.applications.changeIn.Status)
	assert.Equal(t, "C1", f.applications.changeP.CompanyID)
}

func TestChangeStatus_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
	}{
		{application.ErrApplicationNotFound, http.StatusNotFound},
		{application.ErrForbidden, http.StatusForbidden},
		{application.ErrInvalidStatus, http.StatusBadRequest},
		{application.ErrTransitionNotAllowed, http.StatusConflict},
		{fmt.Errorf("update: %w", errors.New("connection reset")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			t.Parallel()

			f := newFixture(hrPrincipal)
			f.applications.changeErr = tc.err
			rec := f.do(t, http.MethodPut, "/applications/app-1/status", `{"status":"Hired"}`)

			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
			}
		})
	}
}

func TestChangeStatus_MalformedBody(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.applications.changeErr = application.ErrInvalidStatus
	rec := f.do(t, http.MethodPut, "/applications/app-1/status", `{"status":"Hired","status":5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed JSON body", decodeBody(t, rec)["error"])
	assert.Equal(t, "app-1", f.applications.changeIn.ID)
	assert.Empty(t, f.applications.changeIn.Status)
}

func TestChangeStatus_ForeignCompanyWithBadBodyIsForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.applications.changeErr = application.ErrForbidden

	for _, body := range []string{`{"status":`, `{}`} {
		rec := f.do(t, http.MethodPut, "/applications/app-1/status", body)
		assert.Equal(t, http.StatusForbidden, rec.Code, body)
	}
}

func TestListByCompany_ArchivedFilter(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.applications.listOut = []*application.Application{{ID: "app-1", CompanyID: "C1", Status: application.StatusApplied}}

	rec := f.do(t, http.MethodGet, "/applications/company/C1?archived=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.applications.listIn.Archived)
	assert.False(t, *f.applications.listIn.Archived)
	assert.Equal(t, "C1", f.applications.listIn.CompanyID)

	apps, ok := decodeBody(t, rec)["applications"].([]any)
	require.True(t, ok)
	assert.Len(t, apps, 1)

	rec = f.do(t, http.MethodGet, "/applications/company/C1?archived=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipeline_ReturnsColumnsInOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	for _, st := range application.BoardStatuses() {
		f.applications.columns = append(f.applications.columns, application.Column{Status: st})
	}

	rec := f.do(t, http.MethodGet, "/applications/company/C1/pipeline", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cols, ok := decodeBody(t, rec)["columns"].([]any)
	require.True(t, ok)
	require.Len(t, cols, 6)
	first := cols[0].(map[string]any)
	assert.Equal(t, "Applied", first["status"])
	assert.Equal(t, []any{}, first["applications"])
}

func TestNotifications_ListQuery(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.notifications.listOut = &notification.ListResult{
		Notifications: []*notification.Notification{{ID: "n1", Title: "Hi", Status: notification.StatusUnread}},
		NextPageToken: "20",
	}

	rec := f.do(t, http.MethodGet, "/notifications?unread=true&pageSize=20&pageToken=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.notifications.listIn.UnreadOnly)
	assert.Equal(t, 20, f.notifications.listIn.PageSize)
	assert.Equal(t, "0", f.notifications.listIn.PageToken)
	assert.Equal(t, "20", decodeBody(t, rec)["nextPageToken"])

	rec = f.do(t, http.MethodGet, "/notifications?pageSize=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_MarkReadForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.notifications.readErr = notification.ErrForbidden

	rec := f.do(t, http.MethodPut, "/notifications/n1/read", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCompanies_RejectOptionalBody(t *testing.T) {
	t.Parallel()

	admin := auth.Principal{UID: "admin-1", Role: user.RoleAdmin}
	f := newFixture(admin)

	rec := f.do(t, http.MethodPut, "/companies/C1/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "C1", f.companies.rejectIn.ID)

	rec = f.do(t, http.MethodPut, "/companies/C2/reject", `{"reason":"incomplete"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "incomplete", f.companies.rejectIn.Reason)

	f.companies.rejectErr = company.ErrCompanyNotFound
	rec = f.do(t, http.MethodPut, "/companies/C3/reject", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanies_ListEmployees(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	rec := f.do(t, http.MethodGet, "/companies/C1/employees?pageSize=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "C1", f.employees.in.CompanyID)
	assert.Equal(t, 10, f.employees.in.PageSize)

	body := decodeBody(t, rec)
	assert.Equal(t, "1", body["nextPageToken"])
	assert.Len(t, body["employees"], 1)
}

func TestMeetings_ApproveWithStartOverride(t *testing.T) {
	t.Parallel()

	admin := auth.Principal{UID: "admin-1", Role: user.RoleAdmin}
	f := newFixture(admin)

	rec := f.do(t, http.MethodPut, "/meetings/m1/approve", `{"startTime":"2026-06-01T09:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.meetings.approveIn.Start)
	assert.True(t, f.meetings.approveIn.Start.Equal(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)))

	m, ok := decodeBody(t, rec)["meeting"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://zoom.test/j/1", m["joinUrl"])
}

func TestMeetings_ProviderFailureIsBadGateway(t *testing.T) {
	t.Parallel()

	admin := auth.Principal{UID: "admin-1", Role: user.RoleAdmin}
	f := newFixture(admin)
	f.meetings.approveErr = fmt.Errorf("%w: 500 from zoom", meeting.ErrProvider)

	rec := f.do(t, http.MethodPut, "/meetings/m1/approve", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Nil(t, f.meetings.approveIn.Start)
	assert.Equal(t, meeting.ErrProvider.Error(), decodeBody(t, rec)["error"])
}

func TestRegister_UsesTokenIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(auth.Principal{})
	f.auth.identity = auth.Identity{UID: "uid-9", Email: "new@example.com", Name: "Token Name"}

	rec := f.do(t, http.MethodPost, "/auth/register", `{"role":"jobseeker"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "uid-9", f.users.registerIn.ID)
	assert.Equal(t, "new@example.com", f.users.registerIn.Email)
	assert.Equal(t, "Token Name", f.users.registerIn.Name)
	assert.Equal(t, user.RoleJobSeeker, f.users.registerIn.Role)

	f.users.registerErr = user.ErrUserAlreadyExists
	rec = f.do(t, http.MethodPost, "/auth/register", `{"role":"jobseeker"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMe(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	f.users.found = &user.User{ID: "hr-1", Email: "hr@acme.test", Role: user.RoleCompany, CompanyID: "C1"}

	rec := f.do(t, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)

	u, ok := decodeBody(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "C1", u["companyId"])
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	rec := f.do(t, http.MethodPatch, "/me", `{"name":"Hana Sato"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hr-1", f.users.updateIn.ID)
	assert.Equal(t, "Hana Sato", f.users.updateIn.Name)

	u, ok := decodeBody(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hana Sato", u["name"])

	f.users.updateErr = user.ErrInvalidName
	rec = f.do(t, http.MethodPatch, "/me", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	f := newFixture(hrPrincipal)
	rec := f.do(t, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
