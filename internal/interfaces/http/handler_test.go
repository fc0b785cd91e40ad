package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/auth"
	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/application/report"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/docstore"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-vet/internal/interfaces/http"
)

type server struct {
	app    *fiber.App
	store  *memory.DocumentStore
	authUC *auth.UseCase
	token  string
}

// newServer arma la API completa sobre el store en memoria. products permite sustituir el store del CRUD.
func newServer(t *testing.T, products repository.RecordStore) *server {
	t.Helper()
	store := memory.NewDocumentStore()
	if products == nil {
		products = store
	}
	catalog := inv.DefaultCatalog()
	w := activity.NewWriter(store, time.UTC, nil)
	productUC := inventory.NewProductUseCase(catalog, products, w, 5)
	authUC := auth.NewUseCase(docstore.NewUserRepository(store), w, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, nil)

	app := apphttp.NewApp("estoque-vet-test")
	apphttp.Router(app, apphttp.RouterDeps{
		Catalog:     catalog,
		ProductUC:   productUC,
		TransferUC:  inventory.NewTransferUseCase(catalog, memory.NewTxRunner(store), w, nil, nil),
		ImportUC:    inventory.NewImportUseCase(productUC, nil, nil),
		AuthUC:      authUC,
		ReportUC:    report.NewUseCase(catalog, store, w, time.UTC, nil),
		ReportPDF:   pdf.NewReportGenerator(catalog),
		Activity:    w,
		JWTSecret:   testJWTSecret,
		StoreDriver: "memory",
	})
	return &server{app: app, store: store, authUC: authUC, token: tokenForRole(t, entity.RoleOperador)}
}

func (s *server) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func productBody(nome string, qty int64) dto.ProductRequest {
	return dto.ProductRequest{
		Nome: nome, Categoria: "Insumos", TipoQuantidade: "unitario", Quantidade: qty,
		Fornecedor: "VetSupply", Validade: "2026-03-15",
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	out := decode[dto.HealthResponse](t, s.do(t, http.MethodGet, "/health", nil, ""))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "memory", out.Store)
}

func TestProductCRUD(t *testing.T) {
	s := newServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/locations/principal/products", productBody("Seringa 10ml", 40), s.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ProductMutationResponse](t, resp)
	require.NotNil(t, created.Product)
	id := created.Product.ID
	assert.NotEmpty(t, id)
	assert.Empty(t, created.LogWarning)
	require.NotNil(t, created.Product.Validade)
	assert.Equal(t, "2026-03-15", *created.Product.Validade)
	assert.Equal(t, testUserID, created.Product.UserID)

	list := decode[dto.ProductListResponse](t, s.do(t, http.MethodGet, "/api/locations/principal/products?q=seringa", nil, s.token))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Seringa 10ml", list.Items[0].Nome)

	upd := productBody("Seringa 10ml", 3)
	resp = s.do(t, http.MethodPut, "/api/locations/principal/products/"+id, upd, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.ProductMutationResponse](t, resp)
	assert.Equal(t, int64(3), updated.Product.Quantidade)

	summary := decode[dto.SummaryResponse](t, s.do(t, http.MethodGet, "/api/locations/principal/summary", nil, s.token))
	assert.Equal(t, 1, summary.TotalBatches)
	require.Len(t, summary.LowStock, 1)
	require.Len(t, summary.ByCategory, 3)

	resp = s.do(t, http.MethodDelete, "/api/locations/principal/products/"+id, nil, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/locations/principal/products/"+id, nil, s.token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	acts := decode[dto.ActivityListResponse](t, s.do(t, http.MethodGet, "/api/activity", nil, s.token))
	require.Len(t, acts.Items, 3)
	kinds := []string{acts.Items[0].TipoOperacao, acts.Items[1].TipoOperacao, acts.Items[2].TipoOperacao}
	assert.ElementsMatch(t, []string{"adicao", "atualizacao", "remocao"}, kinds)
	for _, it := range acts.Items {
		assert.Contains(t, it.Mensagem, testEmail)
	}
}

func TestProduct_Validaciones(t *testing.T) {
	s := newServer(t, nil)

	bad := productBody("", -1)
	bad.Categoria = "Brinquedos"
	resp := s.do(t, http.MethodPost, "/api/locations/vet/products", bad, s.token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Fields, "nome")
	assert.Contains(t, body.Fields, "categoria")
	assert.Contains(t, body.Fields, "quantidade")

	fecha := productBody("Gaze", 1)
	fecha.Validade = "logo"
	resp = s.do(t, http.MethodPost, "/api/locations/vet/products", fecha, s.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	fecha.Validade = "9999999"
	resp = s.do(t, http.MethodPost, "/api/locations/vet/products", fecha, s.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	list := decode[dto.ProductListResponse](t, s.do(t, http.MethodGet, "/api/locations/vet/products", nil, s.token))
	assert.Zero(t, list.Total)

	resp = s.do(t, http.MethodGet, "/api/locations/farmacia/products", nil, s.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/locations/vet/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

type downStore struct {
	repository.RecordStore
}

func (downStore) ListAll(context.Context, string) ([]repository.Record, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestProduct_AlmacenCaido(t *testing.T) {
	s := newServer(t, downStore{RecordStore: memory.NewDocumentStore()})
	resp := s.do(t, http.MethodGet, "/api/locations/vet/products", nil, s.token)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "STORE_UNAVAILABLE", body.Code)
	assert.NotContains(t, body.Message, "connection refused")
}

func TestTransfer(t *testing.T) {
	s := newServer(t, nil)
	created := decode[dto.ProductMutationResponse](t,
		s.do(t, http.MethodPost, "/api/locations/principal/products", productBody("Luva P", 10), s.token))
	id := created.Product.ID

	cases := []struct {
		name   string
		req    dto.TransferRequest
		status int
		code   string
	}{
		{"cantidad insuficiente", dto.TransferRequest{SourceLocation: "principal", DestinationLocation: "vet", ProductID: id, Quantity: 11}, http.StatusConflict, "INSUFFICIENT_QUANTITY"},
		{"local desconocido", dto.TransferRequest{SourceLocation: "principal", DestinationLocation: "farmacia", ProductID: id, Quantity: 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"mismo local", dto.TransferRequest{SourceLocation: "principal", DestinationLocation: "principal", ProductID: id, Quantity: 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"lote inexistente", dto.TransferRequest{SourceLocation: "principal", DestinationLocation: "vet", ProductID: "nope", Quantity: 1}, http.StatusNotFound, "NOT_FOUND"},
		{"cantidad cero", dto.TransferRequest{SourceLocation: "principal", DestinationLocation: "vet", ProductID: id}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/transfers", tc.req, s.token)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}

	resp := s.do(t, http.MethodPost, "/api/transfers", dto.TransferRequest{
		SourceLocation: "principal", DestinationLocation: "vet", ProductID: id, Quantity: 4,
	}, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.TransferResponse](t, resp)
	require.NotNil(t, out.Source)
	assert.Equal(t, int64(6), out.Source.Quantidade)
	require.NotNil(t, out.Destination)
	assert.Equal(t, int64(4), out.Destination.Quantidade)
	assert.False(t, out.Merged)
	assert.NotEmpty(t, out.LogID)

	resp = s.do(t, http.MethodPost, "/api/transfers", dto.TransferRequest{
		SourceLocation: "principal", DestinationLocation: "vet", ProductID: id, Quantity: 6,
	}, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[dto.TransferResponse](t, resp)
	assert.True(t, out.SourceDeleted)
	assert.Nil(t, out.Source)
	assert.True(t, out.Merged)
	assert.Equal(t, int64(10), out.Destination.Quantidade)

	acts := decode[dto.ActivityListResponse](t, s.do(t, http.MethodGet, "/api/activity?q=transferiu", nil, s.token))
	assert.Len(t, acts.Items, 2)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t, nil)
	_, err := s.authUC.Register(context.Background(), auth.RegisterInput{Email: "admin@clinica.com", Password: "segredo123", Role: entity.RoleAdmin})
	require.NoError(t, err)

	resp := s.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "admin@clinica.com", Password: "errada"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "admin@clinica.com", Password: "segredo123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleAdmin, login.User.Role)
	admin := "Bearer " + login.Token

	reg := dto.RegisterRequest{Email: "op@clinica.com", Password: "segredo123"}
	resp = s.do(t, http.MethodPost, "/api/auth/register", reg, s.token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "operador no registra usuarios")
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/auth/register", reg, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.RoleOperador, decode[dto.UserResponse](t, resp).Role)

	resp = s.do(t, http.MethodPost, "/api/auth/register", reg, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/auth/logout", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.LogoutResponse](t, resp).OK)
}

func multipartCSV(t *testing.T, csv string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "compras.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, csv)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *server) upload(t *testing.T, path, csv string, fields map[string]string) *http.Response {
	t.Helper()
	body, ct := multipartCSV(t, csv, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", s.token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestImportCSV(t *testing.T) {
	s := newServer(t, nil)
	csv := "Produto;Qtd;Preço;Vencimento\nSeringa;100;2,50;15/03/2026\n;3;1;\nGaze;12;0,80;46096\n"

	resp := s.upload(t, "/api/imports/preview", csv, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[dto.ImportPreviewResponse](t, resp)
	assert.Equal(t, []string{"Produto", "Qtd", "Preço", "Vencimento"}, preview.Headers)
	assert.Equal(t, "Produto", preview.Mapping["nome"])
	assert.Equal(t, 3, preview.TotalRows)
	require.Len(t, preview.Rows, 3)
	assert.NotEmpty(t, preview.Rows[1].Error)

	resp = s.upload(t, "/api/imports", csv, map[string]string{"location": "internacao"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ImportResponse](t, resp)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 3, res.Failed[0].Line)

	list := decode[dto.ProductListResponse](t, s.do(t, http.MethodGet, "/api/locations/internacao/products", nil, s.token))
	assert.Equal(t, 2, list.Total)

	resp = s.upload(t, "/api/imports", csv, map[string]string{"location": "vet", "mapping": `{"nome":"Inexistente"}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.upload(t, "/api/imports/preview", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestReports(t *testing.T) {
	s := newServer(t, nil)
	for _, p := range []dto.ProductRequest{productBody("Seringa", 10), productBody("Luva", 2)} {
		resp := s.do(t, http.MethodPost, "/api/locations/principal/products", p, s.token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.do(t, http.MethodGet, "/api/reports/general", nil, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	r := decode[entity.Report](t, resp)
	assert.Equal(t, 2, r.TotalProducts)
	require.Len(t, r.Entries.Most, 2)
	assert.Equal(t, "Seringa", r.Entries.Most[0].Item)

	resp = s.do(t, http.MethodGet, "/api/reports/general.csv", nil, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.HasPrefix(string(b), "secao;posicao;item;quantidade;valor"))

	resp = s.do(t, http.MethodGet, "/api/reports/general.pdf", nil, s.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}
