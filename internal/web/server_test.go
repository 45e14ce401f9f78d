package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/server/internal/config"
	"github.com/fieldops/server/internal/importer"
)

// memStore implements importer.Store in memory for handler tests.
type memStore struct {
	emails []string
}

func (m *memStore) InvitationEmails(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	return m.emails, nil
}

func (m *memStore) CustomerIdentities(ctx context.Context, companyID uuid.UUID) ([]importer.CustomerIdentity, error) {
	return nil, nil
}

func (m *memStore) ServiceCatalog(ctx context.Context, companyID uuid.UUID) (importer.Catalog, error) {
	return importer.Catalog{}, nil
}

func (m *memStore) MaterialNames(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (m *memStore) CreateInvitation(ctx context.Context, companyID uuid.UUID, tm importer.TeamMember) error {
	m.emails = append(m.emails, tm.Email)
	return nil
}

func (m *memStore) CreateCustomer(ctx context.Context, companyID uuid.UUID, c importer.Customer) error {
	return nil
}

func (m *memStore) CreateMaterial(ctx context.Context, companyID uuid.UUID, mat importer.Material) error {
	return nil
}

func (m *memStore) AppendServiceCatalog(ctx context.Context, companyID uuid.UUID, services, categories []string) error {
	return nil
}

func testServer(t *testing.T) *Server {
	t.Helper()

	engine := importer.NewEngine(&memStore{})
	engine.PaceDelay = 0

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20

	return NewServer(importer.NewService(engine), cfg)
}

func multipartUpload(t *testing.T, companyID, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("company_id", companyID); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleListKinds(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import-kinds", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Kinds []string `json:"kinds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Kinds) != 4 {
		t.Errorf("kinds = %v, want 4 entries", body.Kinds)
	}
}

func TestHandleStartImportValidation(t *testing.T) {
	srv := testServer(t)

	t.Run("unknown kind", func(t *testing.T) {
		buf, ctype := multipartUpload(t, uuid.New().String(), "x.csv", "Email,Name\n")
		req := httptest.NewRequest(http.MethodPost, "/api/imports/projects", buf)
		req.Header.Set("Content-Type", ctype)

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad company id", func(t *testing.T) {
		buf, ctype := multipartUpload(t, "not-a-uuid", "x.csv", "Email,Name\n")
		req := httptest.NewRequest(http.MethodPost, "/api/imports/team_member", buf)
		req.Header.Set("Content-Type", ctype)

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("company_id", uuid.New().String())
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/imports/team_member", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestImportRoundTrip(t *testing.T) {
	srv := testServer(t)

	csvData := "Email,Name\nnew@acme.com,New Hire\nbad-row,No At Sign\nnew@acme.com,Again\n"
	buf, ctype := multipartUpload(t, uuid.New().String(), "team.csv", csvData)

	req := httptest.NewRequest(http.MethodPost, "/api/imports/team_member", buf)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start import status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var started struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.RunID == "" {
		t.Fatal("empty run_id")
	}

	// The result endpoint blocks until the run settles.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports/"+started.RunID+"/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result importer.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Total != 3 || result.Successful != 1 || result.Failed != 1 || result.Duplicates != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleImportResultUnknownRun(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports/"+uuid.New().String()+"/result", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleRunHistoryValidation(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports?company_id=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// No history store configured: an empty list, not an error.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports?company_id="+uuid.New().String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Runs []importer.RunRecord `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 0 {
		t.Errorf("runs = %+v, want empty", body.Runs)
	}
}
