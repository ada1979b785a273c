package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "category_id", "name", "description", "target_amount", "current_amount", "target_date", "created_at", "updated_at", "deleted_at"})
}

func TestSavingHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `future_savings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/savings", NewSavingHandler().Create)

	body := `{"name":"Emergency fund","target_amount":10000,"current_amount":2500,"target_date":"2026-01-01"}`
	req := httptest.NewRequest("POST", "/savings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingHandler_Create_MissingTargetDate(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/savings", NewSavingHandler().Create)

	body := `{"name":"Emergency fund","target_amount":10000}`
	req := httptest.NewRequest("POST", "/savings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestSavingHandler_Visualization(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	target := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT .* FROM `future_savings`").
		WillReturnRows(savingRows().
			AddRow(1, 1, nil, "Emergency fund", "", 10000.0, 4000.0, target, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/savings/visualization", NewSavingHandler().Visualization)

	req := httptest.NewRequest("GET", "/savings/visualization", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Emergency fund", item["name"])
	assert.Equal(t, float64(40), item["progress_percentage"])
	assert.Equal(t, "2026-01-01", item["target_date"])
	require.NoError(t, mock.ExpectationsWereMet())
}
