package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	infraRepo "github.com/SaltaGet/Back-SIJAC/internal/infra/repository"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
	"github.com/SaltaGet/Back-SIJAC/internal/validators"
)

func init() {
	if err := validators.Register(); err != nil {
		panic(err)
	}
}

// ======================================================
// MEDIA
// ======================================================

func TestMediaServesStoredImages(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, "images/blog/x.webp", "image/webp", []byte("RIFFxxxxWEBP"))
	_ = store.Put(ctx, "backups/2026-03-10/users.csv.gz", "application/gzip", []byte("secret"))

	h := NewMediaHandler(store, "images")
	r := gin.New()
	r.GET("/media/*key", h.Serve)

	w := do(r, http.MethodGet, store.URL("images/blog/x.webp"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/webp" {
		t.Fatalf("content type = %q", ct)
	}
	if w.Body.String() != "RIFFxxxxWEBP" {
		t.Fatalf("body = %q", w.Body.String())
	}

	cases := []string{
		"/media/images/blog/missing.webp",
		"/media/backups/2026-03-10/users.csv.gz",
		"/media/images/../backups/2026-03-10/users.csv.gz",
	}
	for _, path := range cases {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

// ======================================================
// CASES
// ======================================================

type fakeCases struct {
	cases  map[string]models.Case
	shared map[string][]string
}

func newFakeCases() *fakeCases {
	return &fakeCases{
		cases: map[string]models.Case{
			"c1": {ID: "c1", Detail: "Sucesión", State: models.CaseStateInitial, ClientID: "cl1"},
		},
		shared: map[string][]string{"c1": {"owner", "colleague"}},
	}
}

func (f *fakeCases) linked(caseID, userID string) bool {
	for _, u := range f.shared[caseID] {
		if u == userID {
			return true
		}
	}
	return false
}

func (f *fakeCases) Create(_ context.Context, cs *models.Case, ownerID string) error {
	cs.ID = "c-new"
	f.cases[cs.ID] = *cs
	f.shared[cs.ID] = []string{ownerID}
	return nil
}

func (f *fakeCases) List(_ context.Context, scope infraRepo.CaseScope, _ infraRepo.CaseFilter) ([]models.Case, error) {
	var out []models.Case
	for id, cs := range f.cases {
		if scope.All || f.linked(id, scope.UserID) {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (f *fakeCases) Get(_ context.Context, scope infraRepo.CaseScope, id string) (*models.Case, error) {
	cs, ok := f.cases[id]
	if !ok || (!scope.All && !f.linked(id, scope.UserID)) {
		return nil, infraRepo.ErrCaseNotFound
	}
	return &cs, nil
}

func (f *fakeCases) Update(_ context.Context, cs *models.Case) error {
	f.cases[cs.ID] = *cs
	return nil
}

func (f *fakeCases) Share(_ context.Context, caseID, userID string) error {
	f.shared[caseID] = append(f.shared[caseID], userID)
	return nil
}

func (f *fakeCases) Unshare(_ context.Context, caseID, userID string) error {
	users := f.shared[caseID]
	for i, u := range users {
		if u == userID {
			f.shared[caseID] = append(users[:i:i], users[i+1:]...)
			return nil
		}
	}
	return infraRepo.ErrCaseNotShared
}

func TestCaseUpdateDetailAndState(t *testing.T) {
	repo := newFakeCases()
	h := NewCaseHandler(repo, nil)

	r := gin.New()
	r.PUT("/owner/cases/:case_id", as("owner", models.RoleUser), h.Update)
	r.PUT("/stranger/cases/:case_id", as("stranger", models.RoleUser), h.Update)

	w := do(r, http.MethodPut, "/owner/cases/c1", `{"detail":" Sucesión ab intestato ","state":"process"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	got := repo.cases["c1"]
	if got.Detail != "Sucesión ab intestato" || got.State != models.CaseStateProcess {
		t.Fatalf("case not updated: %+v", got)
	}

	w = do(r, http.MethodPut, "/owner/cases/c1", `{"detail":"x","state":"archived"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_request" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPut, "/stranger/cases/c1", `{"detail":"x","state":"finish"}`)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "case_not_found" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if repo.cases["c1"].State != models.CaseStateProcess {
		t.Fatal("invisible case was modified")
	}
}

func TestCaseUnshare(t *testing.T) {
	repo := newFakeCases()
	h := NewCaseHandler(repo, nil)

	r := gin.New()
	r.DELETE("/cases/:case_id/share/:user_id", as("owner", models.RoleUser), h.Unshare)

	w := do(r, http.MethodDelete, "/cases/c1/share/owner", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "cannot_unshare_self" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodDelete, "/cases/c1/share/colleague", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if repo.linked("c1", "colleague") {
		t.Fatal("colleague still linked")
	}

	w = do(r, http.MethodDelete, "/cases/c1/share/colleague", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "case_not_shared" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodDelete, "/cases/missing/share/colleague", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

// ======================================================
// AUDIT LOGS
// ======================================================

type fakeAuditLogs struct {
	rows map[uint]models.AuditLog
}

func (f fakeAuditLogs) List(context.Context, audit.ListFilter) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func (f fakeAuditLogs) Get(_ context.Context, id uint) (*models.AuditLog, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, audit.ErrLogNotFound
	}
	return &row, nil
}

func TestAuditLogGet(t *testing.T) {
	h := NewAuditLogsHandler(fakeAuditLogs{rows: map[uint]models.AuditLog{
		7: {ID: 7, Action: "case_shared", Entity: "case"},
	}}, nil)

	r := gin.New()
	r.GET("/audit-logs/:id", h.Get)

	w := do(r, http.MethodGet, "/audit-logs/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var row models.AuditLog
	if err := json.Unmarshal(w.Body.Bytes(), &row); err != nil {
		t.Fatal(err)
	}
	if row.ID != 7 || row.Action != "case_shared" {
		t.Fatalf("unexpected row %+v", row)
	}

	if w := do(r, http.MethodGet, "/audit-logs/8", ""); w.Code != http.StatusNotFound || errorCode(t, w) != "audit_log_not_found" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/audit-logs/abc", ""); w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_id" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
