package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `Fatura de agosto de 2025
LANÇAMENTOS: COMPRAS E SAQUES
ALINE I DE SOUSA (final 9826)
13/07 SUPERMERCADO ZONA SUL 9.000,00
20/07 PADARIA IMPERIAL 100,00
25/07 POSTO CENTRAL 39,39
LANÇAMENTOS NO CARTÃO (FINAL 9826) 9.139,39
`

func init() {
	gin.SetMode(gin.TestMode)
}

type parseResponse struct {
	Items []struct {
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Amount      string  `json:"amount"`
		Last4       *string `json:"last4"`
		Flux        string  `json:"flux"`
	} `json:"items"`
	Stats struct {
		Matched int `json:"matched"`
		ByCard  map[string]struct {
			Delta string `json:"delta"`
		} `json:"by_card"`
	} `json:"stats"`
}

func TestHealth(t *testing.T) {
	router := NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestParseRawBody(t *testing.T) {
	router := NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader(sampleStatement))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Items, 3)
	assert.Equal(t, "2025-07-13", resp.Items[0].Date)
	assert.Equal(t, "9000.00", resp.Items[0].Amount)
	assert.Equal(t, "Saida", resp.Items[0].Flux)
	require.NotNil(t, resp.Items[0].Last4)
	assert.Equal(t, "Final 9826 - ALINE I DE SOUSA", *resp.Items[0].Last4)

	assert.Equal(t, 3, resp.Stats.Matched)
	require.Contains(t, resp.Stats.ByCard, "9826")
	assert.Equal(t, "0,00", resp.Stats.ByCard["9826"].Delta)
}

func TestParseMultipartUpload(t *testing.T) {
	router := NewRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "fatura.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleStatement))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 3)
}

func TestParseEmptyBody(t *testing.T) {
	router := NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader(""))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty input stream")
}
