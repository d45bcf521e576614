package api

import (
	"time"

	"expensetracker/analytics"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 消费分析处理器
// 数据库只负责按日期范围取数，聚合和预测计算在 analytics 包内完成
type AnalyticsHandler struct{}

// NewAnalyticsHandler 创建消费分析处理器
func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

// fetchExpenses 取当前用户指定日期范围内的消费记录，零值边界表示该侧不限
func fetchExpenses(userID uint, startDate, endDate time.Time) ([]models.Expense, error) {
	query := database.DB.Where("user_id = ?", userID)
	if !startDate.IsZero() {
		query = query.Where("date >= ?", startDate)
	}
	if !endDate.IsZero() {
		query = query.Where("date <= ?", endDate)
	}

	var expenses []models.Expense
	err := query.Order("date ASC").Find(&expenses).Error
	return expenses, err
}

// parseDateRange 解析 startDate/endDate 查询参数（格式 2006-01-02），结束日期含当天
func parseDateRange(c *gin.Context) (time.Time, time.Time, []FieldError) {
	var startDate, endDate time.Time
	var errs []FieldError

	if s := c.Query("startDate"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			errs = append(errs, FieldError{Field: "startDate", Message: "开始日期格式错误，应为: 2006-01-02"})
		} else {
			startDate = t
		}
	}
	if s := c.Query("endDate"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			errs = append(errs, FieldError{Field: "endDate", Message: "结束日期格式错误，应为: 2006-01-02"})
		} else {
			endDate = t.Add(24*time.Hour - time.Second)
		}
	}
	return startDate, endDate, errs
}

// GetSpending 获取消费汇总统计
// @Summary 获取消费汇总统计
// @Description 获取指定日期范围内的总额、均值、最大、最小和笔数，范围为空则统计全部
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=analytics.Summary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/analytics/spending [get]
func (h *AnalyticsHandler) GetSpending(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startDate, endDate, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	expenses, err := fetchExpenses(userID, startDate, endDate)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, analytics.Summarize(expenses))
}

// GetCategoryBreakdown 获取按类别统计
// @Summary 获取按类别统计
// @Description 按类别分组统计指定日期范围内的消费，含每类占比，按总额降序
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/analytics/category-breakdown [get]
func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startDate, endDate, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	expenses, err := fetchExpenses(userID, startDate, endDate)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"breakdown": analytics.CategoryBreakdown(expenses),
	})
}

// GetMonthlyTrends 获取月度趋势
// @Summary 获取月度趋势
// @Description 近 6 个月按日历月统计的总额、笔数、均值，按 (年, 月) 升序
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/analytics/monthly-trends [get]
func (h *AnalyticsHandler) GetMonthlyTrends(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	now := time.Now()

	expenses, err := fetchExpenses(userID, now.AddDate(0, -6, 0), now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"trends": analytics.MonthlyTrends(expenses, now),
	})
}

// GetPredictive 获取下月消费预测
// @Summary 获取下月消费预测
// @Description 基于近 3 个月的月度总额做朴素线性外推，返回预测值、趋势标签和置信度
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=analytics.Prediction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/analytics/predictive [get]
func (h *AnalyticsHandler) GetPredictive(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	now := time.Now()

	expenses, err := fetchExpenses(userID, now.AddDate(0, -3, 0), now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, analytics.Predict(expenses, now))
}
