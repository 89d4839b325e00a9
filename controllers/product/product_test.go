package productcontroller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/services"
	"github.com/gunalchandran/grocery-backend/store"
	"github.com/gunalchandran/grocery-backend/uploads"
)

type fixture struct {
	router *gin.Engine
	store  *store.MemoryStore
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	images, err := uploads.NewStore(dir, "http://localhost:5000", "/uploads")
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	catalog := services.NewCatalog(mem, images)

	r := gin.New()
	r.POST("/products", CreateProduct(catalog))
	r.GET("/products", ListProducts(catalog))
	r.GET("/products/:id", GetProduct(catalog))
	r.PUT("/products/:id", UpdateProduct(catalog))
	r.DELETE("/products/:id", DeleteProduct(catalog))
	r.GET("/export", ExportProductsToExcel(catalog))
	r.POST("/import", ImportProductsFromExcel(catalog))
	return &fixture{router: r, store: mem, dir: dir}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a form with the given fields and, when fileName
// is set, a file part under fileField.
func multipartRequest(t *testing.T, method, url string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, http.MethodPost, "/products", map[string]string{
		"product_name": "Amul Butter",
		"brands":       "Amul",
		"price":        "55.5",
		"stock":        "12",
	}, "image", "butter.png", []byte("png")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Product added", body["message"])
	id, _ := body["product_id"].(string)
	require.NotEmpty(t, id)

	p, err := f.store.FindProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Amul Butter", p.Name)
	assert.Equal(t, 55.5, p.Price)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, 1, p.SchemaVersion)
	assert.Contains(t, p.ImageURL, "http://localhost:5000/uploads/")

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(p.ImageURL), entries[0].Name())
}

func TestCreateProductRejects(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		fields   map[string]string
		fileName string
		want     string
	}{
		{"no image", map[string]string{"product_name": "Milk"}, "", "No image uploaded"},
		{"bad extension", map[string]string{"product_name": "Milk"}, "milk.exe", "Invalid file type"},
		{"bad stock", map[string]string{"stock": "many"}, "milk.png", "Invalid stock"},
		{"bad price", map[string]string{"price": "free"}, "milk.png", "Invalid price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(multipartRequest(t, http.MethodPost, "/products", tc.fields, "image", tc.fileName, []byte("x")))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decode(t, rec)["error"])
		})
	}

	products, err := f.store.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetUpdateDeleteProduct(t *testing.T) {
	f := newFixture(t)
	id, err := f.store.InsertProduct(context.Background(), &models.Product{Name: "Rice", Price: 80, Stock: 5, SchemaVersion: 1})
	require.NoError(t, err)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rice", decode(t, rec)["product_name"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/products/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(multipartRequest(t, http.MethodPut, "/products/"+id, map[string]string{"price": "95"}, "", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product updated successfully", decode(t, rec)["message"])

	rec = f.do(multipartRequest(t, http.MethodPut, "/products/"+id, map[string]string{"price": "95"}, "", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No changes made", decode(t, rec)["message"])

	rec = f.do(multipartRequest(t, http.MethodPut, "/products/"+id, nil, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid fields to update", decode(t, rec)["error"])

	rec = f.do(multipartRequest(t, http.MethodPut, "/products/"+id, nil, "image", "rice.jpg", []byte("jpg")))
	require.Equal(t, http.StatusOK, rec.Code)
	p, err := f.store.FindProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, p.ImageURL, "rice.jpg")
	assert.Equal(t, 95.0, p.Price)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/products/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted", decode(t, rec)["message"])

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/products/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["error"])
}

func TestExportThenImport(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.InsertProduct(context.Background(), &models.Product{Name: "Tea", Brand: "Tata", Price: 120, Stock: 3, SchemaVersion: 1})
	require.NoError(t, err)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products.xlsx")

	exported, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, exported.Sheets, 1)
	assert.Equal(t, 2, exported.Sheets[0].MaxRow)

	rec = f.do(multipartRequest(t, http.MethodPost, "/import", nil, "file", "products.xlsx", rec.Body.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["created_count"])
	assert.Equal(t, float64(1), body["updated_count"])

	rec = f.do(multipartRequest(t, http.MethodPost, "/import", nil, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Excel file is required", decode(t, rec)["error"])
}
