package api

import (
	"math"
	"strconv"
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	emailService *service.EmailService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(cfg *config.Config) *ExpenseHandler {
	return &ExpenseHandler{
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// ExpenseRequest 创建/更新消费记录请求（更新为整体覆盖语义，字段要求与创建一致）
type ExpenseRequest struct {
	Title         string   `json:"title" binding:"required,min=3,max=100" example:"周末采购"`
	Amount        float64  `json:"amount" binding:"required,gt=0" example:"99.99"`
	Category      string   `json:"category" binding:"required" example:"food"`
	Date          string   `json:"date" example:"2024-01-15"`
	Description   string   `json:"description" binding:"omitempty,max=500" example:"超市"`
	PaymentMethod string   `json:"payment_method" binding:"required" example:"card"`
	IsRecurring   bool     `json:"is_recurring" example:"false"`
	Tags          []string `json:"tags"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page      int    `form:"page" example:"1"`
	Limit     int    `form:"limit" example:"10"`
	Category  string `form:"category" example:"food"`
	StartDate string `form:"startDate" example:"2024-01-01"`
	EndDate   string `form:"endDate" example:"2024-12-31"`
	Sort      string `form:"sort" example:"-date"`
}

// sortColumns 列表排序白名单，防止任意列注入
var sortColumns = map[string]string{
	"date":        "date ASC",
	"-date":       "date DESC",
	"amount":      "amount ASC",
	"-amount":     "amount DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

// hasAtMostTwoDecimals 金额最多 2 位小数
func hasAtMostTwoDecimals(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// parseExpenseDate 解析消费日期，支持 RFC3339 和日期两种格式，空值取当前时间
func parseExpenseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// validateExpenseRequest 枚举成员、小数位数和日期约束校验，返回字段级错误
func validateExpenseRequest(req *ExpenseRequest) (time.Time, []FieldError) {
	var errs []FieldError

	if !hasAtMostTwoDecimals(req.Amount) {
		errs = append(errs, FieldError{Field: "amount", Message: "金额最多保留 2 位小数"})
	}
	if !models.IsValidCategory(req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "无效的消费类别"})
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		errs = append(errs, FieldError{Field: "payment_method", Message: "无效的支付方式"})
	}

	date, err := parseExpenseDate(req.Date)
	if err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "日期格式错误，应为: 2006-01-02 或 RFC3339"})
	} else if date.After(time.Now()) {
		errs = append(errs, FieldError{Field: "date", Message: "日期不能晚于当前时间"})
	}

	return date, errs
}

// normalizeTags 标签去空白并统一小写
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录。日期缺省为当前时间，不能晚于当前时间。创建成功后如超出月度预算会触发邮件提醒。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "消费记录信息"
// @Success 201 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, errs := validateExpenseRequest(&req)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	expense := models.Expense{
		UserID:        userID,
		Title:         strings.TrimSpace(req.Title),
		Amount:        req.Amount,
		Category:      req.Category,
		Date:          date,
		Description:   strings.TrimSpace(req.Description),
		PaymentMethod: req.PaymentMethod,
		IsRecurring:   req.IsRecurring,
		Tags:          normalizeTags(req.Tags),
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	h.checkBudget(userID, expense.Date)

	Created(c, expense)
}

// checkBudget 预算检查：当月累计超出用户预算上限时发送邮件提醒
// 邮件服务未启用时直接跳过，发送失败只记录日志不影响请求
func (h *ExpenseHandler) checkBudget(userID uint, date time.Time) {
	if !h.emailService.Enabled() {
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return
	}
	if !user.NotificationsEnabled || user.BudgetLimit == nil {
		return
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	var monthTotal float64
	database.DB.Model(&models.Expense{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, monthStart, monthEnd).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthTotal)

	if monthTotal > *user.BudgetLimit {
		go h.emailService.SendBudgetAlert(&user, monthTotal, date)
	}
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录列表，支持分页、类别和日期范围筛选、排序
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量 (1-100)" default(10)
// @Param category query string false "类别筛选"
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Param sort query string false "排序字段：date/amount/created_at，前缀 - 表示降序" default(-date)
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Sort == "" {
		req.Sort = "-date"
	}

	var errs []FieldError
	if req.Category != "" && !models.IsValidCategory(req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "无效的消费类别"})
	}
	orderBy, ok := sortColumns[req.Sort]
	if !ok {
		errs = append(errs, FieldError{Field: "sort", Message: "无效的排序字段"})
	}
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)

	// 类别筛选
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	// 日期范围筛选
	if req.StartDate != "" {
		if startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local); err == nil {
			query = query.Where("date >= ?", startDate)
		}
	}
	if req.EndDate != "" {
		if endDate, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local); err == nil {
			// 包含结束日期当天
			endDate = endDate.Add(24*time.Hour - time.Second)
			query = query.Where("date <= ?", endDate)
		}
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var expenses []models.Expense
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(orderBy).Offset(offset).Limit(req.Limit).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"expenses": expenses,
		"pagination": Pagination{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(req.Limit))),
		},
	})
}

// Bulk 批量获取最近的消费记录
// @Summary 批量获取消费记录
// @Description 获取当前用户最近的消费记录，按日期降序，最多 1000 条
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/expenses/bulk [get]
func (h *ExpenseHandler) Bulk(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(1000).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"results":  len(expenses),
		"expenses": expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 整体覆盖指定的消费记录，字段要求与创建一致
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body ExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, errs := validateExpenseRequest(&req)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	expense.Title = strings.TrimSpace(req.Title)
	expense.Amount = req.Amount
	expense.Category = req.Category
	expense.Date = date
	expense.Description = strings.TrimSpace(req.Description)
	expense.PaymentMethod = req.PaymentMethod
	expense.IsRecurring = req.IsRecurring
	expense.Tags = normalizeTags(req.Tags)

	if err := database.DB.Save(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetCategories 获取消费类别列表
// @Summary 获取消费类别列表
// @Description 获取静态配置的消费类别目录和支持的支付方式
// @Tags 消费记录
// @Accept json
// @Produce json
// @Success 200 {object} Response "获取成功"
// @Router /api/categories [get]
func (h *ExpenseHandler) GetCategories(c *gin.Context) {
	Success(c, gin.H{
		"categories":      models.GetCategories(),
		"payment_methods": models.GetPaymentMethods(),
	})
}
