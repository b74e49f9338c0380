package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

type mockTableService struct {
	createFunc func(ctx context.Context, table *model.Table) error
	updateFunc func(ctx context.Context, id string, update *model.TableUpdate) (*model.Table, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockTableService) Create(ctx context.Context, table *model.Table) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, table)
	}
	return nil
}

func (m *mockTableService) GetByID(ctx context.Context, id string) (*model.Table, error) {
	return &model.Table{ID: id}, nil
}

func (m *mockTableService) GetAll(ctx context.Context) ([]*model.Table, error) {
	return []*model.Table{{ID: "t1", TableNumber: 1}, {ID: "t2", TableNumber: 2}}, nil
}

func (m *mockTableService) Update(ctx context.Context, id string, update *model.TableUpdate) (*model.Table, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &model.Table{ID: id}, nil
}

func (m *mockTableService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func serve(svc *mockTableService, method, path, body, role string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewTableHandler(svc, logger.Nop()).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWritesRequireManager(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"create", http.MethodPost, "/api/v1/tables", `{"table_number":1,"capacity":2}`},
		{"update", http.MethodPatch, "/api/v1/tables/id/t1", `{"capacity":4}`},
		{"delete", http.MethodDelete, "/api/v1/tables/id/t1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(&mockTableService{}, tt.method, tt.path, tt.body, "STAFF"); rec.Code != http.StatusForbidden {
				t.Errorf("expected 403 for staff, got %d", rec.Code)
			}
			if rec := serve(&mockTableService{}, tt.method, tt.path, tt.body, "manager"); rec.Code == http.StatusForbidden {
				t.Errorf("expected manager to pass, got %d", rec.Code)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	svc := &mockTableService{
		createFunc: func(ctx context.Context, table *model.Table) error {
			table.ID = "t9"
			return nil
		},
	}

	rec := serve(svc, http.MethodPost, "/api/v1/tables", `{"table_number":9,"capacity":4,"location":"Patio"}`, RoleManager)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Data model.Table `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Data.ID != "t9" || resp.Data.Location != "Patio" {
		t.Errorf("unexpected table: %+v", resp.Data)
	}
}

func TestDelete_ConflictWhenBooked(t *testing.T) {
	svc := &mockTableService{
		deleteFunc: func(ctx context.Context, id string) error {
			return apperrors.Conflict("Table has active bookings")
		},
	}

	rec := serve(svc, http.MethodDelete, "/api/v1/tables/id/t1", "", RoleManager)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp httputil.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT code, got %s", resp.Code)
	}

	svc.deleteFunc = nil
	if rec := serve(svc, http.MethodDelete, "/api/v1/tables/id/t1", "", RoleManager); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestUpdate_NormalizesStatus(t *testing.T) {
	var got model.TableStatus
	svc := &mockTableService{
		updateFunc: func(ctx context.Context, id string, update *model.TableUpdate) (*model.Table, error) {
			got = update.Status
			return &model.Table{ID: id, Status: update.Status}, nil
		},
	}

	rec := serve(svc, http.MethodPatch, "/api/v1/tables/id/t1", `{"status":"reserved"}`, RoleManager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != model.TableReserved {
		t.Errorf("expected RESERVED, got %s", got)
	}
}

func TestGetAll_Public(t *testing.T) {
	rec := serve(&mockTableService{}, http.MethodGet, "/api/v1/tables", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
