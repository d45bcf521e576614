// Package analytics 消费数据聚合与预测引擎。
// 所有计算都是对已筛选消费记录集合和参考时间 now 的纯函数，不访问数据库、不产生副作用。
package analytics

import (
	"math"
	"sort"
	"time"

	"expensetracker/models"
)

// 趋势标签
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// 预测置信度
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Summary 汇总统计
type Summary struct {
	TotalExpenses  float64 `json:"total_expenses"`
	AverageExpense float64 `json:"average_expense"`
	MaxExpense     float64 `json:"max_expense"`
	MinExpense     float64 `json:"min_expense"`
	Count          int64   `json:"count"`
}

// CategoryStat 按类别统计
type CategoryStat struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage"`
}

// MonthlyStat 按月统计
type MonthlyStat struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Total   float64 `json:"total"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// Prediction 下月消费预测
type Prediction struct {
	PredictedNextMonth float64   `json:"predicted_next_month"`
	Trend              string    `json:"trend"`
	AverageMonthly     float64   `json:"average_monthly"`
	Confidence         string    `json:"confidence"`
	HistoricalData     []float64 `json:"historical_data"`
}

// round2 四舍五入保留 2 位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize 汇总统计：总额、均值、最大、最小、笔数
// 空集合返回全零，不报错
func Summarize(expenses []models.Expense) Summary {
	var s Summary
	if len(expenses) == 0 {
		return s
	}

	s.MinExpense = expenses[0].Amount
	for _, e := range expenses {
		s.TotalExpenses += e.Amount
		if e.Amount > s.MaxExpense {
			s.MaxExpense = e.Amount
		}
		if e.Amount < s.MinExpense {
			s.MinExpense = e.Amount
		}
	}
	s.Count = int64(len(expenses))
	s.AverageExpense = s.TotalExpenses / float64(s.Count)
	return s
}

// CategoryBreakdown 按类别分组统计，按总额降序排列
// 每组附带占总额的百分比，总额为 0 时所有占比为 0
func CategoryBreakdown(expenses []models.Expense) []CategoryStat {
	grouped := make(map[string]*CategoryStat)
	order := make([]string, 0)
	for _, e := range expenses {
		g, ok := grouped[e.Category]
		if !ok {
			g = &CategoryStat{Category: e.Category}
			grouped[e.Category] = g
			order = append(order, e.Category)
		}
		g.Total += e.Amount
		g.Count++
	}

	stats := make([]CategoryStat, 0, len(order))
	var grandTotal float64
	for _, cat := range order {
		g := grouped[cat]
		g.Average = round2(g.Total / float64(g.Count))
		grandTotal += g.Total
		stats = append(stats, *g)
	}

	for i := range stats {
		if grandTotal > 0 {
			stats[i].Percentage = round2(stats[i].Total / grandTotal * 100)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})
	return stats
}

// monthKey 按 (年, 月) 分组的键
type monthKey struct {
	year  int
	month int
}

// groupByMonth 在 [since, now] 窗口内按日历月分组汇总，按 (年, 月) 升序返回
func groupByMonth(expenses []models.Expense, since, now time.Time) []MonthlyStat {
	grouped := make(map[monthKey]*MonthlyStat)
	for _, e := range expenses {
		if e.Date.Before(since) || e.Date.After(now) {
			continue
		}
		k := monthKey{year: e.Date.Year(), month: int(e.Date.Month())}
		g, ok := grouped[k]
		if !ok {
			g = &MonthlyStat{Year: k.year, Month: k.month}
			grouped[k] = g
		}
		g.Total += e.Amount
		g.Count++
	}

	stats := make([]MonthlyStat, 0, len(grouped))
	for _, g := range grouped {
		stats = append(stats, *g)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Year != stats[j].Year {
			return stats[i].Year < stats[j].Year
		}
		return stats[i].Month < stats[j].Month
	})
	return stats
}

// MonthlyTrends 近 6 个月的月度趋势，按 (年, 月) 升序
func MonthlyTrends(expenses []models.Expense, now time.Time) []MonthlyStat {
	stats := groupByMonth(expenses, now.AddDate(0, -6, 0), now)
	for i := range stats {
		stats[i].Average = round2(stats[i].Total / float64(stats[i].Count))
		stats[i].Total = round2(stats[i].Total)
	}
	return stats
}

// Predict 基于近 3 个月的月度总额做朴素线性外推
//
// 无数据时预测为 0、趋势 stable、置信度 low。否则：
//   - 趋势：末月与上月相比超出 ±10% 判定为 increasing/decreasing，不足两个月恒为 stable
//   - 增长率：(末月 - 首月) / 首月；首月为 0 时视为未定义，按 0 处理，
//     预测退化为纯均值（避免除零传播出 Inf/NaN）
//   - 预测值 = 均值 × (1 + 增长率)，保留 2 位小数
//   - 置信度：3 个月数据为 high，1~2 个月为 medium
func Predict(expenses []models.Expense, now time.Time) Prediction {
	months := groupByMonth(expenses, now.AddDate(0, -3, 0), now)

	if len(months) == 0 {
		return Prediction{
			PredictedNextMonth: 0,
			Trend:              TrendStable,
			Confidence:         ConfidenceLow,
			HistoricalData:     []float64{},
		}
	}

	totals := make([]float64, len(months))
	var sum float64
	for i, m := range months {
		totals[i] = m.Total
		sum += m.Total
	}
	n := len(totals)
	average := sum / float64(n)

	trend := TrendStable
	if n >= 2 {
		last := totals[n-1]
		prev := totals[n-2]
		switch {
		case last > prev*1.1:
			trend = TrendIncreasing
		case last < prev*0.9:
			trend = TrendDecreasing
		}
	}

	growthRate := 0.0
	if n >= 2 && totals[0] != 0 {
		growthRate = (totals[n-1] - totals[0]) / totals[0]
	}

	confidence := ConfidenceMedium
	if n >= 3 {
		confidence = ConfidenceHigh
	}

	return Prediction{
		PredictedNextMonth: round2(average * (1 + growthRate)),
		Trend:              trend,
		AverageMonthly:     round2(average),
		Confidence:         confidence,
		HistoricalData:     totals,
	}
}
