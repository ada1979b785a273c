package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyRecordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "category_id", "name", "description", "amount", "date", "created_at", "updated_at", "deleted_at"})
}

func TestDashboardHandler_GetDashboard_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 收入、支出、债务、储蓄四次查询均无数据
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(emptyRecordRows())
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(emptyRecordRows())
	mock.ExpectQuery("SELECT .* FROM `debts`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .* FROM `future_savings`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard", NewDashboardHandler().GetDashboard)

	req := httptest.NewRequest("GET", "/dashboard?period=month", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total_income"])
	assert.Equal(t, float64(0), data["total_expenses"])
	assert.Equal(t, float64(0), data["total_debt"])
	assert.Equal(t, float64(0), data["total_savings"])
	// 当月每天一个桶
	assert.NotEmpty(t, data["income_data"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardHandler_GetDashboard_InvalidPeriod(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard", NewDashboardHandler().GetDashboard)

	req := httptest.NewRequest("GET", "/dashboard?period=quarter", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "无效的统计周期")
}

func TestDashboardHandler_GetDashboard_CustomMissingDates(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard", NewDashboardHandler().GetDashboard)

	req := httptest.NewRequest("GET", "/dashboard?period=custom&start_date=2024-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "start_date")
}

func TestDashboardHandler_GetChart_NoData(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(emptyRecordRows())
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(emptyRecordRows())
	mock.ExpectQuery("SELECT .* FROM `debts`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .* FROM `future_savings`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard/chart", NewDashboardHandler().GetChart)

	req := httptest.NewRequest("GET", "/dashboard/chart?period=month", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 无收入数据时返回 204
	assert.Equal(t, 204, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
