package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"finanalyst/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Import: config.ImportConfig{MaxFileSizeMB: 5},
	}
}

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestImportHandler_NoFile(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/import", NewImportHandler(importTestConfig()).Import)

	req := httptest.NewRequest("POST", "/import", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "CSV")
}

func TestImportHandler_MissingHeader(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	body, contentType := multipartCSV(t, "data.csv", "date,category,name,amount\n2024-01-15,Food,Lunch,10\n")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/import", NewImportHandler(importTestConfig()).Import)

	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "缺少必需字段")
	assert.Contains(t, w.Body.String(), "type")
}

func TestImportHandler_WrongExtension(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	body, contentType := multipartCSV(t, "data.txt", "date,type,category,name,amount\n")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/import", NewImportHandler(importTestConfig()).Import)

	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), ".csv")
}

func TestImportHandler_Success(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	csv := "date,type,category,name,amount\n" +
		"2024-01-15,expense,Food,Lunch,12.50\n" +
		"2024-01-16,income,Salary,Pay,1000\n"
	body, contentType := multipartCSV(t, "data.csv", csv)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "description", "created_at", "updated_at", "deleted_at"}).
			AddRow(3, "Food", "expense", "", time.Now(), time.Now(), nil))
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "description", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "Salary", "income", "", time.Now(), time.Now(), nil))
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/import", NewImportHandler(importTestConfig()).Import)

	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["imported_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportHandler_BasicModeSkipsDebt(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	csv := "date,type,category,name,amount\n2024-01-15,debt,Loan Payment,Car Loan,500\n"
	body, contentType := multipartCSV(t, "data.csv", csv)

	// 旧版接口拒绝债务行，事务内无查询
	mock.ExpectBegin()
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/import/basic", NewImportHandler(importTestConfig()).ImportBasic)

	req := httptest.NewRequest("POST", "/import/basic", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["imported_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}
