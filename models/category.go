package models

// 消费类别 ID 常量
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryUtilities     = "utilities"
	CategoryEntertainment = "entertainment"
	CategoryHealthcare    = "healthcare"
	CategoryShopping      = "shopping"
	CategoryEducation     = "education"
	CategoryOther         = "other"
)

// 支付方式常量
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentUPI          = "upi"
	PaymentBankTransfer = "bank_transfer"
)

// Category 消费类别（静态配置，运行期不可变）
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// categories 类别目录，校验和展示共用同一份定义
var categories = []Category{
	{ID: CategoryFood, Name: "餐饮", Icon: "🍔"},
	{ID: CategoryTransport, Name: "交通", Icon: "🚗"},
	{ID: CategoryUtilities, Name: "水电", Icon: "💡"},
	{ID: CategoryEntertainment, Name: "娱乐", Icon: "🎬"},
	{ID: CategoryHealthcare, Name: "医疗", Icon: "🏥"},
	{ID: CategoryShopping, Name: "购物", Icon: "🛍️"},
	{ID: CategoryEducation, Name: "教育", Icon: "📚"},
	{ID: CategoryOther, Name: "其他", Icon: "📦"},
}

var paymentMethods = []string{
	PaymentCash,
	PaymentCard,
	PaymentUPI,
	PaymentBankTransfer,
}

// GetCategories 获取所有消费类别
func GetCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValidCategory 判断类别 ID 是否合法
func IsValidCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// GetPaymentMethods 获取所有支付方式
func GetPaymentMethods() []string {
	out := make([]string, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// IsValidPaymentMethod 判断支付方式是否合法
func IsValidPaymentMethod(m string) bool {
	for _, p := range paymentMethods {
		if p == m {
			return true
		}
	}
	return false
}
