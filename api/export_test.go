package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expensetracker/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newExportRouter 搭建注入固定用户的导出测试路由
func newExportRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("userID", userID) })

	h := NewExportHandler()
	router.GET("/export/csv", h.ExportCSV)
	router.GET("/export/json", h.ExportJSON)
	router.GET("/export/excel", h.ExportExcel)
	return router
}

func exportRows() *sqlmock.Rows {
	return sqlmock.NewRows(expenseColumns()).
		AddRow(2, 1, "打车", 32.5, "transport", time.Date(2024, 5, 2, 18, 0, 0, 0, time.Local), "加班回家", "upi", false, `["工作"]`, time.Now(), time.Now(), nil).
		AddRow(1, 1, "早餐", 15.0, "food", time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local), "", "cash", true, `["早餐","日常"]`, time.Now(), time.Now(), nil)
}

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(exportRows())

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/csv?startDate=2024-05-01&endDate=2024-05-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "expenses_2024-05-01_2024-05-31.csv")

	body := w.Body.String()
	// UTF-8 BOM 前缀
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "ID,标题,金额,类别,日期,支付方式,周期性,标签,描述")
	assert.Contains(t, body, "打车")
	assert.Contains(t, body, "32.50")
	// 多标签以分号连接
	assert.Contains(t, body, "早餐;日常")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_MissingRange(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/csv?startDate=2024-05-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "请提供开始日期和结束日期")
}

func TestExportHandler_ExportJSON(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(exportRows())

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/json?startDate=2024-05-01&endDate=2024-05-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2024-05-01", data["start_date"])
	assert.Equal(t, "2024-05-31", data["end_date"])
	assert.Equal(t, float64(2), data["total_count"])
	assert.Equal(t, 47.5, data["total_amount"])
	assert.Len(t, data["expenses"], 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(exportRows())

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/excel?startDate=2024-05-01&endDate=2024-05-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "expenses_2024-05-01_2024-05-31.xlsx")
	// xlsx 是 zip 包，以 PK 开头
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
	require.NoError(t, mock.ExpectationsWereMet())
}
